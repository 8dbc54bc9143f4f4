package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hermes-project/hermes/internal/telemetry"
)

func newStatsCmd() *cobra.Command {
	var since string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show pointer-vs-traditional-RAG token accounting",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(since)
		},
	}
	cmd.Flags().StringVar(&since, "since", "all", "time window for the cumulative figures: 24h, 7d, or all")
	return cmd
}

func runStats(since string) error {
	eng, err := openEngine(".")
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	acc := eng.Accountant()

	session, err := acc.Session()
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	var cumulative telemetry.Stats
	if d, ok := telemetry.ParseSince(since); ok {
		cumulative, err = acc.Since(d)
	} else {
		cumulative, err = acc.Cumulative()
	}
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	printStats("session", session)
	printStats("cumulative ("+since+")", cumulative)
	return nil
}

func printStats(label string, s telemetry.Stats) {
	fmt.Printf("%s: %d queries, %d pointer tokens, %d fetched tokens, %d traditional tokens, %d saved (%.1f%%)\n",
		label, s.TotalQueries, s.TotalPointerTokens, s.TotalFetchedTokens, s.TotalTraditionalEstimate, s.SavingsTokens, s.SavingsPct)
}
