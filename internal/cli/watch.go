package cli

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/stoker/internal/status"
	"github.com/aretw0/stoker/internal/tui"
	"github.com/aretw0/stoker/pkg/runner"
	"github.com/aretw0/stoker/pkg/target"
	"github.com/aretw0/stoker/pkg/watch"
)

// RunWatch runs a watch target until interrupted: execute once, then
// re-run on every debounced file change, cancelling any in-flight run
// first. Returns the process exit code.
func RunWatch(ctx context.Context, t *target.Target, opts Options) int {
	logger := opts.logger()
	stdout, _ := opts.streams()
	printer := tui.NewPrinter(stdout)

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	reg := prometheus.NewRegistry()
	metrics := status.NewMetrics(reg)

	hooks := mergeHooks(metrics.Hooks(t), watch.Hooks{
		OnStateChange: func(s watch.State) {
			if s == watch.Idle {
				printer.Watching(t.Name, t.Watch)
			}
		},
		OnTrigger: func(tr watch.Trigger) {
			printer.Change(tr.Last.Path, tr.Count)
		},
		OnRunEnd: func(res *runner.Result) {
			switch res.Outcome {
			case runner.Success:
				printer.Success(t.Name)
			case runner.Failed:
				printer.Failure(t.Name, res.FailedStep(), res.ExitCode)
			}
		},
	})

	controller := watch.NewController(t,
		newRunner(t, opts, printer, logger),
		watch.WithRoot(opts.Dir),
		watch.WithLogger(logger),
		watch.WithHooks(hooks),
	)

	if opts.StatusAddr != "" {
		handler := status.NewHandler(controller.Snapshot, reg)
		go status.Serve(sigCtx, opts.StatusAddr, handler, logger)
	}

	printer.Info("watching %s (%v), press Ctrl+C to stop", t.Name, t.Watch)

	err := controller.Run(sigCtx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watch session failed", "target", t.Name, "err", err)
		printer.Info("watch session failed: %v", err)
		return 1
	}

	if sig := sigCtx.Signal(); sig != nil {
		printer.Info("stopped (%s)", sig)
	}
	return 0
}

// mergeHooks fans controller events out to several observers.
func mergeHooks(all ...watch.Hooks) watch.Hooks {
	return watch.Hooks{
		OnStateChange: func(s watch.State) {
			for _, h := range all {
				if h.OnStateChange != nil {
					h.OnStateChange(s)
				}
			}
		},
		OnTrigger: func(tr watch.Trigger) {
			for _, h := range all {
				if h.OnTrigger != nil {
					h.OnTrigger(tr)
				}
			}
		},
		OnRunEnd: func(res *runner.Result) {
			for _, h := range all {
				if h.OnRunEnd != nil {
					h.OnRunEnd(res)
				}
			}
		},
	}
}
