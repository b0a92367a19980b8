// Package executor runs a single shell step to completion, wiring the
// subprocess's output streams through to the caller and reporting its
// exit status.
package executor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/aretw0/stoker/pkg/target"
)

// DefaultGracePeriod is how long a cancelled subprocess gets between
// SIGTERM and SIGKILL.
const DefaultGracePeriod = 5 * time.Second

// LaunchError means the subprocess could not even be started: missing
// shell, bad working directory, permission denied. A step that launched
// and exited non-zero is not a LaunchError.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return "failed to launch step: " + e.Err.Error()
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Shell executes steps through `sh -c`, inheriting the parent environment.
// One OS subprocess is spawned, owned and reaped per Execute call.
type Shell struct {
	root   string
	env    map[string]string
	stdout io.Writer
	stderr io.Writer
	grace  time.Duration
	logger *slog.Logger
}

// Option configures the shell executor.
type Option func(*Shell)

// WithRoot sets the project root all step directories resolve against.
func WithRoot(dir string) Option {
	return func(s *Shell) {
		s.root = dir
	}
}

// WithEnv adds environment variables to every step.
func WithEnv(env map[string]string) Option {
	return func(s *Shell) {
		s.env = env
	}
}

// WithOutput redirects the subprocess streams. Defaults to the caller's
// stdout and stderr so a user watching a dev server sees live logs.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Shell) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// WithGracePeriod sets the SIGTERM-to-SIGKILL window used on cancellation.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Shell) {
		s.grace = d
	}
}

// WithLogger sets the logger for step lifecycle debug events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

// NewShell creates a shell executor rooted at the current directory.
func NewShell(opts ...Option) *Shell {
	s := &Shell{
		root:   ".",
		stdout: os.Stdout,
		stderr: os.Stderr,
		grace:  DefaultGracePeriod,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs one step and blocks until the subprocess terminates.
// A non-zero exit code is a normal return value, not an error; the
// returned error is non-nil only for launch failures (LaunchError) or
// cancellation (the context's error, with the child already reaped).
func (s *Shell) Execute(ctx context.Context, step target.Step) (int, error) {
	dir := s.root
	if step.Dir != "" {
		dir = filepath.Join(s.root, step.Dir)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", step.Run)
	cmd.Dir = dir
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr
	cmd.Env = append(os.Environ(), flattenEnv(s.env)...)

	// Prefer a polite stop: SIGTERM first, SIGKILL after the grace window.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = s.grace

	s.logger.Debug("step starting", "command", step.Run, "dir", dir)

	if err := cmd.Start(); err != nil {
		return -1, &LaunchError{Command: step.Run, Err: err}
	}

	err := cmd.Wait()
	if err == nil {
		s.logger.Debug("step finished", "command", step.Run, "exit_code", 0)
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if ctx.Err() != nil {
			s.logger.Debug("step cancelled", "command", step.Run)
			return code, ctx.Err()
		}
		s.logger.Debug("step finished", "command", step.Run, "exit_code", code)
		return code, nil
	}

	// Wait failed for another reason (e.g. the grace window expired and
	// the child was killed). If the context is gone this is cancellation.
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	return -1, &LaunchError{Command: step.Run, Err: err}
}

func flattenEnv(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	flat := make([]string, 0, len(keys))
	for _, k := range keys {
		flat = append(flat, k+"="+env[k])
	}
	return flat
}
