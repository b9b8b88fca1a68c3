package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HerbHall/tourstream/internal/catalog"
	pkgcatalog "github.com/HerbHall/tourstream/pkg/catalog"
)

var queryCmd = &cobra.Command{
	Use:   "query [keyword]",
	Short: "Query the catalog from the command line",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().String("location", catalog.All, "Location filter (substring), or ALL")
	queryCmd.Flags().String("category", catalog.All, "Category filter (exact), or ALL")
	queryCmd.Flags().String("sort", string(catalog.SortPopular), "Sort: popular, latest, price-low, price-high")
	queryCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	location, _ := cmd.Flags().GetString("location")
	category, _ := cmd.Flags().GetString("category")
	sortMode, _ := cmd.Flags().GetString("sort")
	format, _ := cmd.Flags().GetString("format")

	params := catalog.Params{
		Location: catalog.NormalizeFilter(location),
		Category: catalog.NormalizeFilter(category),
		Sort:     catalog.ParseSortMode(sortMode),
	}
	if len(args) == 1 {
		params.Keyword = args[0]
	}

	engine, err := newEngine()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	res, err := engine.Query(params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "table":
		printResult(out, res)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog.ProductsResponse{
			Count:       len(res.Products),
			Params:      params,
			Recommended: summaries(res.Recommended),
			Regular:     summaries(res.Regular),
		})
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func summaries(ps []*pkgcatalog.Product) []catalog.ProductSummary {
	out := make([]catalog.ProductSummary, 0, len(ps))
	for _, p := range ps {
		out = append(out, catalog.Summary(p))
	}
	return out
}

// printResult prints both sections of a query result in a card layout.
func printResult(w io.Writer, res catalog.Result) {
	if len(res.Products) == 0 {
		fmt.Fprintln(w, "No tours match.")
		return
	}
	printSection(w, "Recommended", res.Recommended)
	if len(res.Recommended) > 0 && len(res.Regular) > 0 {
		fmt.Fprintln(w)
	}
	printSection(w, "All tours", res.Regular)
}

func printSection(w io.Writer, title string, ps []*pkgcatalog.Product) {
	if len(ps) == 0 {
		return
	}
	fmt.Fprintf(w, "%s (%d)\n", title, len(ps))
	for i, p := range ps {
		s := catalog.Summary(p)
		fmt.Fprintf(w, " %d. %s [%s]\n", i+1, truncate(s.Name, 48), s.ID)

		priceLine := "    Price: " + s.DisplayPrice
		if s.OriginalDisplayPrice != "" {
			priceLine += fmt.Sprintf("  (was %s, -%d%%)", s.OriginalDisplayPrice, s.Discount)
		}
		priceLine += fmt.Sprintf("  |  Views: %d", s.Views)
		if !s.IsAvailable {
			priceLine += "  [sold out]"
		}
		fmt.Fprintln(w, priceLine)

		if len(s.Locations) > 0 {
			fmt.Fprintf(w, "    Where: %s\n", strings.Join(s.Locations, ", "))
		}
		if len(s.Categories) > 0 {
			fmt.Fprintf(w, "    Category: %s\n", strings.Join(s.Categories, ", "))
		}
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
