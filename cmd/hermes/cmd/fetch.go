package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "fetch <id>",
		Short: "Dereference a pointer id to its source text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(args[0], jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func runFetch(id string, jsonOutput bool) error {
	eng, err := openEngine(".")
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	result, err := eng.Fetch(id)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	if result == nil {
		return fmt.Errorf("no pointer with id %q", id)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("%s:%d-%d (%d tokens)\n\n%s\n", result.FilePath, result.StartLine, result.EndLine, result.TokenCount, result.Content)
	return nil
}
