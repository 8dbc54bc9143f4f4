package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hermes-project/hermes/internal/search"
)

func newSearchCmd() *cobra.Command {
	var topK int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed project for ranked pointers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(strings.Join(args, " "), topK, jsonOutput)
		},
	}
	cmd.Flags().IntVar(&topK, "top", 10, "maximum number of pointers to return")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func runSearch(query string, topK int, jsonOutput bool) error {
	eng, err := openEngine(".")
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	resp, err := eng.Search(query, topK, search.ModeSmart)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput || !isInteractive() {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if len(resp.Pointers) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, p := range resp.Pointers {
		fmt.Printf("%.2f  %-10s  %s:%s  %s\n  %s\n", p.Relevance, p.NodeType, p.Source, p.Lines, p.Chunk, p.Summary)
	}
	fmt.Printf("\n%d pointer tokens vs ~%d traditional (%.0f%% saved)\n",
		resp.Accounting.PointerTokens, resp.Accounting.TraditionalRAGEstimate, resp.Accounting.SavingsPct)
	return nil
}
