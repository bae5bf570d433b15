package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mwatdr/mwatdr/engine"
)

func (a *app) runCommand() *cobra.Command {
	var (
		asJSON     bool
		metricsOut string
	)
	cmd := &cobra.Command{
		Use:   "run INPUT_DIR OBS_ID START_TIME COEFF_FILE OUTPUT_DIR IGNORE_ERRORS",
		Short: "Run the reconstruction engine and verify its output",
		Long: `run starts the external reconstruction engine with the given arguments, waits
for it to exit and checks the output directory against the exit code: exit 0
must leave a log file and decodable signal files, exit 78 must leave nothing.
The command exits with the engine's exit code.`,
		Args: cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, argv []string) error {
			args, err := engine.ParseArgv(argv)
			if err != nil {
				return err
			}
			log := a.log.With(zap.Uint64("observation_id", args.ObservationID), zap.Uint64("start_time", args.StartTime))
			if err := args.Check(); err != nil {
				log.Warn("preflight check failed, the engine is expected to exit 78", zap.Error(err))
			}

			reg := prometheus.NewRegistry()
			metrics := engine.NewMetrics(reg)
			runner := a.newRunner(a.cfg, log, metrics)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if t := a.cfg.Engine.Timeout; t > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, t)
				defer cancel()
			}
			code, err := runner.Run(ctx, args)
			if metricsOut != "" {
				if werr := prometheus.WriteToTextfile(metricsOut, reg); werr != nil {
					log.Error("failed to write metrics", zap.String("path", metricsOut), zap.Error(werr))
				}
			}
			if err != nil {
				return err
			}

			rep, err := engine.Verify(args.OutputDir, args, code, engine.VerifyOptions{
				Workers:           a.cfg.Verify.Workers,
				AllowEmptySignals: a.cfg.Verify.AllowEmptySignals,
			})
			if err != nil {
				log.Error("engine output violates contract", zap.Int("exit_code", code), zap.Error(err))
				return &exitCodeError{code: 1, err: err}
			}
			if asJSON {
				if err := rep.WriteJSON(a.stdout); err != nil {
					return err
				}
			} else {
				a.printReport(rep)
			}
			if code != engine.ExitOK {
				return &exitCodeError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run report as JSON")
	cmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write Prometheus metrics to this textfile")
	return cmd
}

func (a *app) printReport(rep *engine.Report) {
	fmt.Fprintf(a.stdout, "exit code: %d\n", rep.ExitCode)
	if rep.LogFile != "" {
		fmt.Fprintf(a.stdout, "log file: %s\n", rep.LogFile)
	}
	fmt.Fprintf(a.stdout, "signal files: %d\n", len(rep.Signals))
	for _, s := range rep.Signals {
		fmt.Fprintf(a.stdout, "  %s  %d samples\n", s.Name, s.Samples)
	}
}
