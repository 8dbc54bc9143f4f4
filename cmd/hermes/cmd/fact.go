package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hermes-project/hermes/internal/store"
)

func newFactCmd() *cobra.Command {
	var nodeID string
	var sourceRef string

	cmd := &cobra.Command{
		Use:   "fact <type> <content...>",
		Short: "Record a dated, typed fact about the project",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFact(args[0], strings.Join(args[1:], " "), nodeID, sourceRef)
		},
	}
	cmd.Flags().StringVar(&nodeID, "node", "", "optional node id this fact is attached to")
	cmd.Flags().StringVar(&sourceRef, "source", "", "optional source reference")
	return cmd
}

func runFact(factType, content, nodeID, sourceRef string) error {
	eng, err := openEngine(".")
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	ft := store.FactType(factType)
	if !store.ValidFactType(ft) {
		ft = store.FactTypeDecision
	}

	id, err := eng.Temporal().Add(nodeID, ft, content, sourceRef)
	if err != nil {
		return fmt.Errorf("fact failed: %w", err)
	}
	fmt.Println(id)
	return nil
}
