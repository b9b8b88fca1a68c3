package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/HerbHall/tourstream/internal/backup"
	"github.com/HerbHall/tourstream/internal/store"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Archive the analytics journal, catalog data set and config file",
	RunE:  runBackup,
}

func init() {
	backupCmd.Flags().StringP("output", "o", "", "Output file (default: tourstream-backup-{timestamp}.tar.gz)")
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = backup.DefaultName(time.Now())
	}

	src := backup.Sources{
		JournalPath: journalFile(cfg.GetString("analytics.journal_dsn")),
		CatalogPath: cfg.GetString("catalog.path"),
		ConfigPath:  configPath,
	}
	names, err := backup.Backup(cmd.Context(), src, output)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backup created: %s (%s)\n", output, strings.Join(names, ", "))
	return nil
}

// journalFile maps a journal DSN to the database file it names. In-memory
// journals have no file and yield "".
func journalFile(dsn string) string {
	if dsn == "" || dsn == store.MemoryDSN || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}
