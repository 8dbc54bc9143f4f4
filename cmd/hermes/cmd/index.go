package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Crawl and (re)index a project directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runIndex(path)
		},
	}
	return cmd
}

func runIndex(path string) error {
	eng, err := openEngine(path)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	report, err := eng.Index(backgroundContext(), abs)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	fmt.Printf("indexed %d/%d files (%d skipped, %d errors, %d nodes created)\n",
		report.Indexed, report.TotalFiles, report.Skipped, report.Errors, report.NodesCreated)
	return nil
}
