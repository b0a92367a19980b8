// Package config loads target definitions from a stoker.yaml (or .json)
// file and turns them into the domain model.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/stoker/pkg/target"
)

// DefaultFile is the definition file looked up in the project root when
// no --file flag is given.
const DefaultFile = "stoker.yaml"

// StepConfig is one entry of a target's step list. In YAML it is either a
// plain scalar (the command) or a mapping with a working-directory override:
//
//	steps:
//	  - toolchain build --release
//	  - run: zip -r bundle.zip .
//	    dir: target/deploy
type StepConfig struct {
	Run string `yaml:"run" json:"run"`
	Dir string `yaml:"dir" json:"dir"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (s *StepConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&s.Run)
	}
	type plain StepConfig
	return value.Decode((*plain)(s))
}

// UnmarshalJSON accepts both the string and the object form.
func (s *StepConfig) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Run)
	}
	type plain StepConfig
	return json.Unmarshal(data, (*plain)(s))
}

// TargetConfig is the on-disk shape of one target.
type TargetConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Dir         string            `yaml:"dir" json:"dir"`
	Env         map[string]string `yaml:"env" json:"env"`
	Steps       []StepConfig      `yaml:"steps" json:"steps"`
	Watch       []string          `yaml:"watch" json:"watch"`
	Debounce    string            `yaml:"debounce" json:"debounce"`
}

// File is the root of the definition file.
type File struct {
	Targets []TargetConfig `yaml:"targets" json:"targets"`
}

// Load reads a definition file (YAML or JSON, by extension) and returns the
// declared targets in file order.
func Load(path string) ([]*target.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}

	var file File
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	targets := make([]*target.Target, 0, len(file.Targets))
	for i, tc := range file.Targets {
		t, err := tc.toDomain()
		if err != nil {
			return nil, fmt.Errorf("target %d (%q): %w", i+1, tc.Name, err)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func (tc TargetConfig) toDomain() (*target.Target, error) {
	if strings.TrimSpace(tc.Name) == "" {
		return nil, fmt.Errorf("target name is required")
	}
	if len(tc.Steps) == 0 {
		return nil, fmt.Errorf("at least one step is required")
	}

	steps := make([]target.Step, 0, len(tc.Steps))
	for i, sc := range tc.Steps {
		if strings.TrimSpace(sc.Run) == "" {
			return nil, fmt.Errorf("step %d has no command", i+1)
		}
		steps = append(steps, target.Step{Run: sc.Run, Dir: sc.Dir})
	}

	var debounce time.Duration
	if tc.Debounce != "" {
		d, err := time.ParseDuration(tc.Debounce)
		if err != nil {
			return nil, fmt.Errorf("invalid debounce %q: %w", tc.Debounce, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("debounce must be positive, got %q", tc.Debounce)
		}
		debounce = d
	}

	return &target.Target{
		Name:        tc.Name,
		Description: tc.Description,
		Dir:         tc.Dir,
		Env:         tc.Env,
		Steps:       steps,
		Watch:       tc.Watch,
		Debounce:    debounce,
	}, nil
}
