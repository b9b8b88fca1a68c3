package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HerbHall/tourstream/internal/backup"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [archive]",
	Short: "Restore files from a backup archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func init() {
	restoreCmd.Flags().String("data-dir", ".", "Target directory for restored files")
	restoreCmd.Flags().Bool("force", false, "Overwrite existing files")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	force, _ := cmd.Flags().GetBool("force")

	restored, err := backup.Restore(cmd.Context(), args[0], dataDir, force)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restore complete: %d files restored to %s\n", len(restored), dataDir)
	return nil
}
