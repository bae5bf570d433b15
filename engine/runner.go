package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=enginetest/mock_runner.go -package=enginetest github.com/mwatdr/mwatdr/engine Runner

// Runner starts the engine and blocks until it exits. The returned error is
// non-nil only when no exit code could be obtained: the binary failed to
// start, or ctx ended first. A process killed by a signal reports -1.
type Runner interface {
	Run(ctx context.Context, args Args) (int, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, args Args) (int, error)

func (f RunnerFunc) Run(ctx context.Context, args Args) (int, error) { return f(ctx, args) }

// ProcessRunner runs the engine binary with os/exec.
type ProcessRunner struct {
	Binary string
	// Stdout and Stderr receive the engine's output; nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	Logger  *zap.Logger
	Metrics *Metrics
}

func (r *ProcessRunner) Run(ctx context.Context, args Args) (int, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(
		zap.String("run_id", uuid.NewString()),
		zap.Uint64("observation_id", args.ObservationID),
		zap.Uint64("start_time", args.StartTime),
	)

	cmd := exec.CommandContext(ctx, r.Binary, args.Argv()...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	log.Debug("starting engine", zap.String("binary", r.Binary), zap.Strings("argv", args.Argv()))
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn("engine interrupted", zap.Duration("elapsed", elapsed), zap.Error(ctxErr))
			return -1, fmt.Errorf("engine: %w", ctxErr)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			log.Error("engine failed to run", zap.Error(err))
			return -1, fmt.Errorf("engine: run %s: %w", r.Binary, err)
		}
	}
	code := cmd.ProcessState.ExitCode()
	r.Metrics.observe(code, elapsed)
	if code == ExitOK {
		log.Info("engine finished", zap.Duration("elapsed", elapsed))
	} else {
		log.Warn("engine exited with error", zap.Int("exit_code", code), zap.Duration("elapsed", elapsed))
	}
	return code, nil
}
