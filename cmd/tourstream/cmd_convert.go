package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pkgcatalog "github.com/HerbHall/tourstream/pkg/catalog"
)

var convertCmd = &cobra.Command{
	Use:   "convert [input.csv]",
	Short: "Convert a spreadsheet CSV export into a catalog data set",
	Long: "Convert reads a CSV export whose first row names the columns and writes " +
		"the products as YAML or JSON. Malformed rows are skipped and reported.",
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "Output file (default: stdout); the extension picks the format")
	convertCmd.Flags().String("format", "", "Output format: yaml, json (overrides the output extension)")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	output, _ := cmd.Flags().GetString("output")
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := outputFormat(output, formatFlag)
	if err != nil {
		return err
	}

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	conv, err := pkgcatalog.ParseCSV(in)
	if err != nil {
		return fmt.Errorf("convert %s: %w", args[0], err)
	}
	for _, w := range conv.Warnings {
		logger.Warn("csv row issue", zap.Int("row", w.Row), zap.String("reason", w.Reason))
	}

	var out io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := pkgcatalog.Encode(out, format, conv.Products); err != nil {
		return fmt.Errorf("write data set: %w", err)
	}

	logger.Info("catalog converted",
		zap.Int("products", len(conv.Products)),
		zap.Int("warnings", len(conv.Warnings)),
		zap.String("format", string(format)),
	)
	return nil
}

// outputFormat resolves the data set format from the flag, then the output
// extension, defaulting to YAML for stdout.
func outputFormat(output, flag string) (pkgcatalog.Format, error) {
	switch flag {
	case "yaml", "yml":
		return pkgcatalog.FormatYAML, nil
	case "json":
		return pkgcatalog.FormatJSON, nil
	case "":
	default:
		return "", fmt.Errorf("%w: %s", pkgcatalog.ErrUnknownFormat, flag)
	}
	if output == "" {
		return pkgcatalog.FormatYAML, nil
	}
	return pkgcatalog.FormatFromPath(output)
}
