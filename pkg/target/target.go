// Package target defines the data model for stoker targets and the
// read-only registry they are resolved from.
package target

import "time"

// Step is one shell command with an optional working-directory override.
// The command text is opaque: it is handed to the shell as-is.
type Step struct {
	// Run is the shell command line.
	Run string

	// Dir, when non-empty, overrides the working directory for this
	// step. It is resolved relative to the target's working directory.
	Dir string
}

// Target is a named, ordered sequence of shell steps.
// Targets are immutable once registered.
type Target struct {
	// Name identifies the target on the command line.
	Name string

	// Description is shown by `stoker list`.
	Description string

	// Dir is the default working directory for all steps, relative to
	// the project root. Empty means the project root itself.
	Dir string

	// Env holds extra environment variables applied to every step.
	Env map[string]string

	// Steps run strictly in order. The first non-zero exit stops the run.
	Steps []Step

	// Watch holds glob patterns (doublestar syntax, relative to the
	// project root). A non-empty list makes this a watch target: it is
	// re-run whenever a matching file changes.
	Watch []string

	// Debounce is the quiet window used to coalesce bursts of file
	// events into a single rerun. Zero selects the default.
	Debounce time.Duration
}

// IsWatch reports whether the target re-runs on file changes.
func (t *Target) IsWatch() bool {
	return len(t.Watch) > 0
}
