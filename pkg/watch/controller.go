package watch

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/stoker/pkg/runner"
	"github.com/aretw0/stoker/pkg/target"
)

// State is the controller's position in its lifecycle.
type State int

const (
	// Idle means no run is in flight and the controller awaits a change.
	Idle State = iota
	// Running means a run of the target is in flight.
	Running
	// Cancelling means the in-flight subprocess has been told to stop
	// and the controller is waiting (bounded by the executor's grace
	// period) for it to exit.
	Cancelling
	// Stopped is the final state after an explicit interrupt.
	Stopped
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Cancelling:
		return "cancelling"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// TargetRunner executes one run of a target. Implemented by runner.Runner.
type TargetRunner interface {
	Run(ctx context.Context, t *target.Target) (*runner.Result, error)
}

// Hooks observe controller activity. Nil fields are skipped. Hooks are
// invoked from the controller's event loop, so they must not block.
type Hooks struct {
	OnStateChange func(state State)
	OnTrigger     func(tr Trigger)
	OnRunEnd      func(res *runner.Result)
}

// Snapshot is a point-in-time view of a watch session, safe to expose to
// other goroutines (status endpoint, tests).
type Snapshot struct {
	Target      string    `json:"target"`
	State       string    `json:"state"`
	Runs        uint64    `json:"runs"`
	Failures    uint64    `json:"failures"`
	LastOutcome string    `json:"last_outcome,omitempty"`
	LastStart   time.Time `json:"last_start,omitempty"`
	LastEnd     time.Time `json:"last_end,omitempty"`
}

// Controller is the watch-mode state machine. It guarantees a single run
// of its target at a time: a change event during a run cancels the
// in-flight subprocess and, once it has exited, starts a fresh run
// (cancel-and-restart policy). The run that eventually completes always
// reflects the tree as of its start, never a stale batch.
//
// A failed run is reported and the session keeps watching; only an
// explicit stop (context cancellation, typically SIGINT) ends it.
type Controller struct {
	target   *target.Target
	runner   TargetRunner
	root     string
	debounce time.Duration
	triggers <-chan Trigger
	logger   *slog.Logger
	hooks    Hooks

	mu       sync.Mutex
	state    State
	runs     uint64
	failures uint64
	last     *runner.Result
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithRoot sets the directory whose subtree is watched.
func WithRoot(dir string) ControllerOption {
	return func(c *Controller) {
		c.root = dir
	}
}

// WithDebounce overrides the target's debounce window.
func WithDebounce(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.debounce = d
	}
}

// WithTriggers injects a pre-debounced trigger source instead of a
// file-system watcher. Used by tests and by callers that already own a
// watcher.
func WithTriggers(ch <-chan Trigger) ControllerOption {
	return func(c *Controller) {
		c.triggers = ch
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithHooks installs session observers.
func WithHooks(hooks Hooks) ControllerOption {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// NewController creates a watch controller for the given target.
func NewController(t *target.Target, r TargetRunner, opts ...ControllerOption) *Controller {
	c := &Controller{
		target:   t,
		runner:   r,
		root:     ".",
		debounce: t.Debounce,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:    Idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current session view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Target:   c.target.Name,
		State:    c.state.String(),
		Runs:     c.runs,
		Failures: c.failures,
	}
	if c.last != nil {
		snap.LastOutcome = c.last.Outcome.String()
		snap.LastStart = c.last.Start
		snap.LastEnd = c.last.End
	}
	return snap
}

type runOutcome struct {
	res *runner.Result
	err error
}

// Run executes the target once, then re-runs it on every debounced change
// until ctx is cancelled. It blocks for the whole session and returns
// ctx's error once any in-flight subprocess has been terminated.
func (c *Controller) Run(ctx context.Context) error {
	triggers := c.triggers
	if triggers == nil {
		w, err := NewWatcher(c.root, c.target.Watch, WithWatcherLogger(c.logger))
		if err != nil {
			return err
		}
		defer w.Close()
		go c.drainErrors(ctx, w.Errors())
		triggers = Debounce(w.Events(), c.debounce)
	}

	// The first run starts immediately; afterwards only changes do.
	pending := true

	for {
		if !pending {
			c.setState(Idle)
			select {
			case <-ctx.Done():
				c.setState(Stopped)
				return ctx.Err()
			case tr := <-triggers:
				c.observeTrigger(tr)
			}
		}
		pending = false

		runCtx, cancelRun := context.WithCancel(ctx)
		done := make(chan runOutcome, 1)
		c.setState(Running)
		go func() {
			res, err := c.runner.Run(runCtx, c.target)
			done <- runOutcome{res: res, err: err}
		}()

		select {
		case <-ctx.Done():
			// Session stop: terminate the subprocess and wait for it.
			c.setState(Cancelling)
			cancelRun()
			<-done
			c.setState(Stopped)
			return ctx.Err()

		case tr := <-triggers:
			// Change mid-run: cancel, wait for the old subprocess to be
			// reaped, then loop straight into a fresh run. Two runs of
			// the same target never overlap.
			c.observeTrigger(tr)
			c.setState(Cancelling)
			cancelRun()
			<-done
			pending = true

		case out := <-done:
			cancelRun()
			c.recordRun(out)
		}
	}
}

func (c *Controller) observeTrigger(tr Trigger) {
	c.logger.Info("change detected", "target", c.target.Name, "path", tr.Last.Path, "events", tr.Count)
	if c.hooks.OnTrigger != nil {
		c.hooks.OnTrigger(tr)
	}
}

func (c *Controller) recordRun(out runOutcome) {
	c.mu.Lock()
	c.runs++
	if out.res != nil && out.res.Outcome == runner.Failed {
		c.failures++
	}
	c.last = out.res
	c.mu.Unlock()

	switch {
	case out.err != nil:
		// Launch failures do not stop the session; the user can fix the
		// environment and save again.
		c.logger.Error("run could not complete", "target", c.target.Name, "err", out.err)
	case out.res.Outcome == runner.Failed:
		c.logger.Warn("run failed",
			"target", c.target.Name,
			"step", out.res.FailedStep(),
			"exit_code", out.res.ExitCode)
	default:
		c.logger.Info("run finished", "target", c.target.Name, "outcome", out.res.Outcome.String())
	}

	if c.hooks.OnRunEnd != nil && out.res != nil {
		c.hooks.OnRunEnd(out.res)
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()

	if changed {
		c.logger.Debug("watch state", "target", c.target.Name, "state", s.String())
		if c.hooks.OnStateChange != nil {
			c.hooks.OnStateChange(s)
		}
	}
}

func (c *Controller) drainErrors(ctx context.Context, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			c.logger.Warn("watcher error", "err", err)
		}
	}
}
