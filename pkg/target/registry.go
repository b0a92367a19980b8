package target

import "sort"

// Registry maps target names to their definitions. It is populated once at
// startup from the definition file and read-only afterwards, so lookups
// need no locking.
type Registry struct {
	targets map[string]*Target
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[string]*Target),
	}
}

// Register adds a target. Registering a name twice returns a
// DuplicateTargetError.
func (r *Registry) Register(t *Target) error {
	if _, exists := r.targets[t.Name]; exists {
		return &DuplicateTargetError{Name: t.Name}
	}
	r.targets[t.Name] = t
	return nil
}

// Lookup resolves a name to its target, or returns an UnknownTargetError.
func (r *Registry) Lookup(name string) (*Target, error) {
	t, ok := r.targets[name]
	if !ok {
		return nil, &UnknownTargetError{Name: name}
	}
	return t, nil
}

// Names returns all registered target names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
