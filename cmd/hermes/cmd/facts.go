package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hermes-project/hermes/internal/store"
)

func newFactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts [type]",
		Short: "List active facts, optionally filtered by type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var factType string
			if len(args) == 1 {
				factType = args[0]
			}
			return runFacts(factType)
		},
	}
	return cmd
}

func runFacts(factType string) error {
	eng, err := openEngine(".")
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	var filter *store.FactType
	if factType != "" {
		ft := store.FactType(factType)
		filter = &ft
	}

	facts, err := eng.Temporal().Active(filter)
	if err != nil {
		return fmt.Errorf("facts failed: %w", err)
	}
	if len(facts) == 0 {
		fmt.Println("no active facts")
		return nil
	}
	for _, f := range facts {
		fmt.Printf("%s  [%s]  %s\n", f.ID, f.FactType, f.Content)
	}
	return nil
}
