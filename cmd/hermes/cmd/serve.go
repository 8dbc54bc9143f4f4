package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hermes-project/hermes/internal/config"
	"github.com/hermes-project/hermes/internal/engine"
	"github.com/hermes-project/hermes/internal/rpc"
	"github.com/hermes-project/hermes/internal/watch"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON-RPC stdio server (MCP transport)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	return cmd
}

// runServe starts the stdio JSON-RPC dispatcher. No core operation
// depends on this command; it only translates between the MCP transport
// and engine.Engine's verbs.
func runServe() error {
	root, err := config.FindProjectRoot(".")
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	log := cliLogger()
	eng, err := engine.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	defer func() { _ = eng.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.ReindexInterval > 0 {
		w := watch.New(root, cfg.ReindexInterval, func(reindexCtx context.Context) error {
			_, indexErr := eng.Index(reindexCtx, root)
			return indexErr
		}, log)
		if startErr := w.Start(ctx); startErr != nil {
			log.Warn("failed to start reindex watcher", "error", startErr)
		}
		defer w.Stop()
	}

	server := rpc.New(eng, log)
	return server.Serve(ctx)
}
