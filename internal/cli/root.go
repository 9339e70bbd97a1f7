// Package cli wires Cobra subcommands to application dependencies; it is a thin controller with no business logic.
package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neoclaw-ai/stream/internal/bootstrap"
	"github.com/neoclaw-ai/stream/internal/config"
	"github.com/neoclaw-ai/stream/internal/logging"
	"github.com/neoclaw-ai/stream/internal/stream"
)

// app carries what PersistentPreRunE prepares for the subcommands.
type app struct {
	cfg      *config.Config
	registry *stream.Registry
}

// NewRootCmd creates the root command and registers all subcommands.
func NewRootCmd() *cobra.Command {
	var (
		verbose bool
		debug   bool
		a       = &app{}
	)

	root := &cobra.Command{
		Use:   "stream",
		Short: "Typed in-process broadcast channels",
		// Let main handle fatal error rendering through structured logs.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// config and version only print; they must not write a first-run config.
			switch cmd.Name() {
			case "config", "version":
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config %s: %w", cfg.ConfigPath(), err)
			}

			if err := logging.Configure(strings.ToLower(cfg.Log.Format), cmd.ErrOrStderr()); err != nil {
				return err
			}
			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			if verbose {
				level = slog.LevelDebug
			}
			logging.SetLevel(level)

			firstRun, err := bootstrap.Initialize(cfg)
			if err != nil {
				return err
			}
			if firstRun {
				logging.Logger().Info("wrote default config", "path", cfg.ConfigPath())
			}

			a.cfg = cfg
			a.registry = stream.NewRegistry(stream.WithDebug(cfg.Stream.Debug || debug))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to `stream demo` when no subcommand is provided.
			demoCmd, _, err := cmd.Find([]string{"demo"})
			if err != nil {
				return err
			}
			demoCmd.SetContext(cmd.Context())
			return demoCmd.RunE(demoCmd, args)
		},
	}

	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newDemoCmd(a))
	root.AddCommand(newREPLCmd(a))
	root.AddCommand(newScheduleCmd(a))
	root.AddCommand(newStressCmd(a))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging (debug level)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Trace every stream registration and dispatch")

	return root
}
