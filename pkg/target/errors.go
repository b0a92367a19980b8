package target

import "fmt"

// UnknownTargetError is returned when a lookup names a target that was
// never registered. It maps to a non-zero CLI exit, not a crash.
type UnknownTargetError struct {
	Name string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target: %s", e.Name)
}

// DuplicateTargetError indicates a registry construction bug: two targets
// with the same name in one definition file.
type DuplicateTargetError struct {
	Name string
}

func (e *DuplicateTargetError) Error() string {
	return fmt.Sprintf("duplicate target: %s", e.Name)
}
