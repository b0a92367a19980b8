// Package cli wires the target registry, executor, runner and watch
// controller together behind the stoker command line.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/stoker/internal/logging"
	"github.com/aretw0/stoker/internal/tui"
	"github.com/aretw0/stoker/pkg/executor"
	"github.com/aretw0/stoker/pkg/runner"
	"github.com/aretw0/stoker/pkg/target"
)

// ExitInterrupted is the exit code for a run stopped by a signal,
// following shell convention (128 + SIGINT).
const ExitInterrupted = 130

// Options carries the flags shared by every target invocation.
type Options struct {
	// Dir is the project root targets execute relative to.
	Dir string
	// Debug enables slog debug output on stderr.
	Debug bool
	// StatusAddr, when set, exposes watch sessions over HTTP.
	StatusAddr string

	// Stdout/Stderr override the subprocess streams. Nil means the
	// process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

func (o Options) logger() *slog.Logger {
	if o.Debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

func (o Options) streams() (io.Writer, io.Writer) {
	stdout, stderr := o.Stdout, o.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}

// newRunner assembles the shell executor and target runner for t.
func newRunner(t *target.Target, opts Options, printer *tui.Printer, logger *slog.Logger) *runner.Runner {
	stdout, stderr := opts.streams()
	shell := executor.NewShell(
		executor.WithRoot(filepath.Join(opts.Dir, t.Dir)),
		executor.WithEnv(t.Env),
		executor.WithOutput(stdout, stderr),
		executor.WithLogger(logger),
	)

	total := len(t.Steps)
	return runner.New(shell,
		runner.WithLogger(logger),
		runner.WithHooks(runner.Hooks{
			OnStepStart: func(t *target.Target, index int, step target.Step) {
				printer.Step(t.Name, index, total, step.Run)
			},
		}),
	)
}

// RunTarget executes a plain (non-watch) target once and returns the
// process exit code: 0 on success, the failing step's exit code on
// failure, ExitInterrupted on a signal.
func RunTarget(ctx context.Context, t *target.Target, opts Options) int {
	logger := opts.logger()
	stdout, stderr := opts.streams()
	printer := tui.NewPrinter(stdout)

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	res, err := newRunner(t, opts, printer, logger).Run(sigCtx, t)
	if err != nil {
		var launch *executor.LaunchError
		if errors.As(err, &launch) {
			tui.NewPrinter(stderr).Info("cannot run %q: %v", launch.Command, launch.Err)
		}
		logger.Error("run aborted", "target", t.Name, "err", err)
		return exitCode(res)
	}

	switch res.Outcome {
	case runner.Success:
		printer.Success(t.Name)
	case runner.Failed:
		printer.Failure(t.Name, res.FailedStep(), res.ExitCode)
	case runner.Canceled:
		printer.Info("%s interrupted", t.Name)
	}
	return exitCode(res)
}

// exitCode maps a run result to a process exit code, propagating the
// failing step's code where possible.
func exitCode(res *runner.Result) int {
	if res == nil {
		return 1
	}
	switch res.Outcome {
	case runner.Success:
		return 0
	case runner.Canceled:
		return ExitInterrupted
	default:
		if res.ExitCode > 0 {
			return res.ExitCode
		}
		return 1
	}
}
