// Package runner executes a target's step sequence in order with
// fail-fast semantics. It is an orchestrator, not a formatter: all output
// belongs to the steps themselves.
package runner

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/stoker/pkg/target"
)

// StepExecutor runs one shell step to completion. Implemented by
// executor.Shell; tests substitute fakes.
type StepExecutor interface {
	Execute(ctx context.Context, step target.Step) (int, error)
}

// Hooks observe run lifecycle events. Nil fields are skipped.
type Hooks struct {
	OnStepStart func(t *target.Target, index int, step target.Step)
	OnStepEnd   func(t *target.Target, index int, step target.Step, exitCode int)
	OnRunEnd    func(res *Result)
}

// Runner drives a StepExecutor over a target's steps.
type Runner struct {
	exec   StepExecutor
	logger *slog.Logger
	hooks  Hooks
}

// Option configures the runner.
type Option func(*Runner)

// WithLogger sets the logger for run lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithHooks installs lifecycle observers.
func WithHooks(hooks Hooks) Option {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// New creates a runner around the given executor.
func New(exec StepExecutor, opts ...Option) *Runner {
	r := &Runner{
		exec:   exec,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the target's steps strictly in registration order,
// stopping at the first non-zero exit. The returned error is non-nil only
// when a step could not run at all (launch failure); a step that ran and
// failed is reported through the Result.
func (r *Runner) Run(ctx context.Context, t *target.Target) (*Result, error) {
	res := &Result{
		Target: t.Name,
		Start:  time.Now(),
	}
	defer func() {
		res.End = time.Now()
		if r.hooks.OnRunEnd != nil {
			r.hooks.OnRunEnd(res)
		}
	}()

	for i, step := range t.Steps {
		if ctx.Err() != nil {
			res.Outcome = Canceled
			return res, nil
		}

		if r.hooks.OnStepStart != nil {
			r.hooks.OnStepStart(t, i+1, step)
		}
		r.logger.Info("running step", "target", t.Name, "step", i+1, "command", step.Run)

		stepStart := time.Now()
		code, err := r.exec.Execute(ctx, step)
		res.Steps = append(res.Steps, StepResult{
			Step:     step,
			ExitCode: code,
			Start:    stepStart,
			End:      time.Now(),
		})

		if r.hooks.OnStepEnd != nil {
			r.hooks.OnStepEnd(t, i+1, step, code)
		}

		if err != nil {
			if ctx.Err() != nil {
				res.Outcome = Canceled
				return res, nil
			}
			res.Outcome = Failed
			res.ExitCode = exitCodeOr(code, 1)
			return res, err
		}

		if code != 0 {
			r.logger.Warn("step failed", "target", t.Name, "step", i+1, "exit_code", code)
			res.Outcome = Failed
			res.ExitCode = code
			return res, nil
		}
	}

	res.Outcome = Success
	return res, nil
}

func exitCodeOr(code, fallback int) int {
	if code > 0 {
		return code
	}
	return fallback
}
