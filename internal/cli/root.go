// Package cli implements the mwatdr command tree.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mwatdr/mwatdr/engine"
	"github.com/mwatdr/mwatdr/internal/config"
	"github.com/mwatdr/mwatdr/internal/logging"
)

// RunnerFactory builds the engine runner for the run command.
type RunnerFactory func(cfg *config.Config, log *zap.Logger, m *engine.Metrics) engine.Runner

type Option func(*app)

// WithRunner replaces the process-backed engine runner.
func WithRunner(f RunnerFactory) Option {
	return func(a *app) { a.newRunner = f }
}

// WithLogger skips logger construction from config.
func WithLogger(log *zap.Logger) Option {
	return func(a *app) { a.log = log }
}

type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool

	cfg       *config.Config
	log       *zap.Logger
	newRunner RunnerFactory
}

// exitCodeError carries a process exit code out of a command.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitCodeError) Unwrap() error { return e.err }

// Execute runs the command line and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer, opts ...Option) int {
	a := &app{stdout: stdout, stderr: stderr, newRunner: processRunner}
	for _, o := range opts {
		o(a)
	}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if a.log != nil {
		_ = a.log.Sync()
	}
	if err == nil {
		return 0
	}
	var ec *exitCodeError
	if errors.As(err, &ec) {
		if ec.err != nil {
			fmt.Fprintln(stderr, "error:", ec.err)
		}
		return ec.code
	}
	fmt.Fprintln(stderr, "error:", err)
	return 1
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mwatdr",
		Short: "MWA time-domain reconstruction file tools",
		Long: `mwatdr reads and writes the inverse polyphase filter coefficient files and
reconstructed signal files of the MWA time-domain reconstruction pipeline, and
drives the external reconstruction engine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.Log.Level = "debug"
			}
			a.cfg = cfg
			if a.log == nil {
				log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				a.log = log
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(a.ipfbCommand(), a.signalCommand(), a.fingerprintCommand(), a.runCommand())
	return root
}

func processRunner(cfg *config.Config, log *zap.Logger, m *engine.Metrics) engine.Runner {
	return &engine.ProcessRunner{
		Binary:  cfg.Engine.Binary,
		Logger:  log,
		Metrics: m,
	}
}
