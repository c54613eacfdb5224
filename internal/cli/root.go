// Package cli wires configuration, logging and storage together behind the
// timers command line. Running it with no subcommand opens the UI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sadopc/timers/internal/config"
	"github.com/sadopc/timers/internal/logging"
	"github.com/sadopc/timers/internal/store"
	"github.com/sadopc/timers/internal/timer"
	"github.com/sadopc/timers/internal/tui"
)

// env carries what a command needs once flags are parsed.
type env struct {
	configPath string
	dbPath     string

	cfg     config.Config
	logger  *slog.Logger
	state   *timer.State
	closers []func() error
}

func (e *env) loadConfig() error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	if e.dbPath != "" {
		cfg.DBPath = e.dbPath
	}
	e.cfg = cfg
	return nil
}

// open loads config, starts logging and opens the timer state.
func (e *env) open(ctx context.Context) error {
	if err := e.loadConfig(); err != nil {
		return err
	}

	logger, closeLog, err := logging.New(e.cfg.Log.File, e.cfg.Log.Level)
	if err != nil {
		return err
	}
	e.logger = logger
	e.closers = append(e.closers, closeLog)

	s, err := store.New(e.cfg.DBPath)
	if err != nil {
		e.close()
		return fmt.Errorf("failed to open database: %w", err)
	}
	e.closers = append(e.closers, s.Close)

	repo := store.NewTimerRepository(s, e.cfg.StorageKey)
	st, err := timer.Open(ctx, repo, timer.SystemClock{}, logger)
	if err != nil {
		e.close()
		if errors.Is(err, store.ErrCorrupt) {
			return fmt.Errorf("%w\nHint: inspect or move aside %s", err, e.cfg.DBPath)
		}
		return err
	}
	e.state = st
	logger.Debug("Opened timers", "db", e.cfg.DBPath, "key", e.cfg.StorageKey)
	return nil
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && e.logger != nil {
			e.logger.Warn("Close failed", "error", err)
		}
	}
	e.closers = nil
}

// withState opens the state around fn.
func (e *env) withState(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := e.open(cmd.Context()); err != nil {
			return err
		}
		defer e.close()
		return fn(cmd, args)
	}
}

// resolve looks a timer up by id or unique id prefix.
func (e *env) resolve(ref string) (timer.Record, error) {
	r, err := e.state.Timers().Resolve(ref)
	if err != nil {
		return timer.Record{}, fmt.Errorf("%w: %s", err, ref)
	}
	return r, nil
}

// NewRootCmd builds the timers command tree.
func NewRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "timers",
		Short: "Track time with titled, per-project timers",
		Long: `timers keeps a list of named timers grouped by project.

Run without a subcommand to open the terminal UI. The subcommands work on
the same database, so a running UI picks up their changes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: e.withState(func(cmd *cobra.Command, _ []string) error {
			opts := tui.Options{
				RefreshInterval: e.cfg.RefreshInterval,
				Logger:          e.logger,
			}
			if e.cfg.Watch {
				opts.WatchPath = e.cfg.DBPath
			}
			e.logger.Info("Starting UI", "db", e.cfg.DBPath)
			return tui.Run(cmd.Context(), e.state, opts)
		}),
	}

	root.PersistentFlags().StringVar(&e.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&e.dbPath, "db", "", "database file, overrides db_path")

	root.AddCommand(
		listCmd(e),
		addCmd(e),
		editCmd(e),
		rmCmd(e),
		startCmd(e),
		stopCmd(e),
		exportCmd(e),
		configCmd(e),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
