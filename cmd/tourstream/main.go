// Command tourstream serves the tour catalog over HTTP and MCP, converts
// spreadsheet exports into catalog data sets and queries them offline.
package main

func main() {
	Execute()
}
