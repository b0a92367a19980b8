package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/stoker/pkg/target"
)

// Outcome is the terminal status of a run.
type Outcome int

const (
	// Success means every step exited zero.
	Success Outcome = iota
	// Failed means a step exited non-zero and later steps were skipped.
	Failed
	// Canceled means the run was interrupted before reaching a verdict.
	Canceled
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// StepFailure reports which step broke a run. Index is 1-based, matching
// how steps are listed to the user.
type StepFailure struct {
	Target   string
	Index    int
	ExitCode int
}

func (e *StepFailure) Error() string {
	return fmt.Sprintf("target %s: step %d failed with exit code %d", e.Target, e.Index, e.ExitCode)
}

// StepResult records one executed step.
type StepResult struct {
	Step     target.Step
	ExitCode int
	Start    time.Time
	End      time.Time
}

// Result is one execution of a target. Steps holds only the steps that
// actually ran; on failure the last entry is the failing one.
type Result struct {
	Target   string
	Outcome  Outcome
	Steps    []StepResult
	ExitCode int
	Start    time.Time
	End      time.Time
}

// FailedStep returns the 1-based index of the failing step, or 0.
func (r *Result) FailedStep() int {
	if r.Outcome != Failed {
		return 0
	}
	return len(r.Steps)
}

// Duration is the wall-clock time of the whole run.
func (r *Result) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Err maps the result to the error taxonomy: nil on success, a
// StepFailure on failure, context.Canceled when interrupted.
func (r *Result) Err() error {
	switch r.Outcome {
	case Failed:
		return &StepFailure{Target: r.Target, Index: r.FailedStep(), ExitCode: r.ExitCode}
	case Canceled:
		return context.Canceled
	default:
		return nil
	}
}
