// Package cmd provides the CLI commands for hermes. Each command is a
// thin translator onto one core engine verb; none of the ranking,
// ingestion, or accounting logic lives here.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hermes-project/hermes/internal/config"
	"github.com/hermes-project/hermes/internal/engine"
	"github.com/hermes-project/hermes/internal/logging"
	"github.com/hermes-project/hermes/pkg/version"
)

var debugMode bool

// NewRootCmd builds the hermes command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hermes",
		Short:   "Local, per-project code-navigation engine",
		Version: version.Version,
		Long: `Hermes indexes a project into ranked, fetchable pointers instead of
full file dumps: run 'hermes index' once, then 'hermes search <query>'
and 'hermes fetch <id>' to explore it.`,
	}
	cmd.SetVersionTemplate("hermes version {{.Version}}\n")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging to stderr")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newFactCmd())
	cmd.AddCommand(newFactsCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// openEngine resolves the project root from dir (or the working
// directory), loads its config, and wires an Engine over its on-disk
// store. Callers must Close() the returned engine.
func openEngine(dir string) (*engine.Engine, error) {
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		root, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve project root: %w", err)
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	log := cliLogger()
	return engine.Open(cfg, log)
}

func cliLogger() *slog.Logger {
	level := slog.LevelWarn
	if debugMode {
		level = slog.LevelDebug
	}
	lcfg := logging.DefaultConfig()
	lcfg.Level = levelString(level)
	lcfg.WriteToStderr = true
	logger, _, err := logging.Setup(lcfg)
	if err != nil {
		return slog.Default()
	}
	return logger
}

func levelString(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	default:
		return "info"
	}
}

// isInteractive reports whether stdout is a terminal, used to decide
// between human-readable and machine-readable (JSON) output by default.
func isInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// backgroundContext is the context commands run under; the core defines
// no cancellation semantics of its own, so a plain background context is
// sufficient.
func backgroundContext() context.Context {
	return context.Background()
}
