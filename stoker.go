// Package stoker resolves named build/deploy targets to ordered shell
// steps and executes them with fail-fast semantics, optionally re-running
// a target whenever watched files change.
//
// Targets are declared in a flat stoker.yaml file; there is no
// target-to-target dependency graph. The library surface mirrors the CLI:
// load a project, look up a target, hand it to a runner or a watch
// controller.
package stoker

import (
	"path/filepath"

	"github.com/aretw0/stoker/pkg/config"
	"github.com/aretw0/stoker/pkg/target"
)

// Project is a loaded set of targets rooted at a directory.
type Project struct {
	// Root is the directory all targets execute relative to.
	Root string

	registry *target.Registry
	order    []string
}

// Load reads the definition file and builds the project registry.
// file is resolved relative to root unless absolute.
func Load(root, file string) (*Project, error) {
	path := file
	if path == "" {
		path = config.DefaultFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	targets, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Root:     root,
		registry: target.NewRegistry(),
	}
	for _, t := range targets {
		if err := p.registry.Register(t); err != nil {
			return nil, err
		}
		p.order = append(p.order, t.Name)
	}
	return p, nil
}

// Lookup resolves a target by name.
func (p *Project) Lookup(name string) (*target.Target, error) {
	return p.registry.Lookup(name)
}

// Targets returns the project's targets in definition-file order.
func (p *Project) Targets() []*target.Target {
	targets := make([]*target.Target, 0, len(p.order))
	for _, name := range p.order {
		t, _ := p.registry.Lookup(name)
		targets = append(targets, t)
	}
	return targets
}
