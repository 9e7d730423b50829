package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/devpolicy/internal/policy"
	"github.com/roach88/devpolicy/internal/resolver"
	"github.com/roach88/devpolicy/internal/settings"
)

// Scenario is one policy scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Bindings maps a binding name (privileged, audio_enhancement) to the
	// package it follows. Omitted bindings use the config defaults.
	Bindings map[string]string `yaml:"bindings,omitempty"`

	// Packages is the initial name→uid table for startup resolution.
	Packages map[string]int `yaml:"packages,omitempty"`

	// Settings are seeded as defaults before the first step.
	Settings map[string]bool `yaml:"settings,omitempty"`

	Steps []Step `yaml:"steps"`
}

// Step is exactly one of an event, a setting write or an expectation.
type Step struct {
	Event   *EventStep   `yaml:"event,omitempty"`
	Setting *SettingStep `yaml:"setting,omitempty"`
	Expect  *Expect      `yaml:"expect,omitempty"`

	// Outcome is the expected resolver outcome of an event step.
	Outcome string `yaml:"outcome,omitempty"`
}

// EventStep is a package-resolution event fed to the resolver.
type EventStep struct {
	Kind    string `yaml:"kind"`
	Package string `yaml:"package,omitempty"`
	UID     int    `yaml:"uid,omitempty"`
}

// SettingStep writes one policy setting through the store.
type SettingStep struct {
	Key   string `yaml:"key"`
	Value *bool  `yaml:"value"`
}

// Expect checks the registry. Every listed field must hold.
type Expect struct {
	// State is a subset of policy.Snapshot fields by JSON name.
	State map[string]any `yaml:"state,omitempty"`

	PrivilegedUIDs          []int `yaml:"privileged_uids,omitempty"`
	NotPrivilegedUIDs       []int `yaml:"not_privileged_uids,omitempty"`
	PrivilegedAppIDs        []int `yaml:"privileged_app_ids,omitempty"`
	NotPrivilegedAppIDs     []int `yaml:"not_privileged_app_ids,omitempty"`
	AudioEnhancementUIDs    []int `yaml:"audio_enhancement_uids,omitempty"`
	NotAudioEnhancementUIDs []int `yaml:"not_audio_enhancement_uids,omitempty"`
}

func (e *Expect) empty() bool {
	return len(e.State) == 0 &&
		len(e.PrivilegedUIDs) == 0 && len(e.NotPrivilegedUIDs) == 0 &&
		len(e.PrivilegedAppIDs) == 0 && len(e.NotPrivilegedAppIDs) == 0 &&
		len(e.AudioEnhancementUIDs) == 0 && len(e.NotAudioEnhancementUIDs) == 0
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields so "expects:" does not silently check nothing.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", filepath.Base(path), err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, ordered by file
// name. Scenario names must be unique.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	seen := make(map[string]string, len(paths))
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("duplicate scenario name %q in %s and %s", s.Name, prev, p)
		}
		seen[s.Name] = p
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for name := range s.Bindings {
		if _, ok := policy.ParseBinding(name); !ok {
			return fmt.Errorf("bindings: unknown binding %q", name)
		}
	}

	for key := range s.Settings {
		if _, ok := settings.ParseKey(key); !ok {
			return fmt.Errorf("settings: unknown setting %q", key)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(i int, step *Step) error {
	n := 0
	if step.Event != nil {
		n++
	}
	if step.Setting != nil {
		n++
	}
	if step.Expect != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("steps[%d]: exactly one of event, setting or expect is required", i)
	}

	if step.Outcome != "" && step.Event == nil {
		return fmt.Errorf("steps[%d]: outcome is only valid on event steps", i)
	}

	switch {
	case step.Event != nil:
		if step.Event.Kind == "" {
			return fmt.Errorf("steps[%d].event: kind is required", i)
		}
		switch resolver.Outcome(step.Outcome) {
		case "", resolver.OutcomeBound, resolver.OutcomeUnbound, resolver.OutcomeReady,
			resolver.OutcomeIgnored, resolver.OutcomeInvalid:
		default:
			return fmt.Errorf("steps[%d]: unknown outcome %q", i, step.Outcome)
		}
	case step.Setting != nil:
		if step.Setting.Key == "" {
			return fmt.Errorf("steps[%d].setting: key is required", i)
		}
		if _, ok := settings.ParseKey(step.Setting.Key); !ok {
			return fmt.Errorf("steps[%d].setting: unknown setting %q", i, step.Setting.Key)
		}
		if step.Setting.Value == nil {
			return fmt.Errorf("steps[%d].setting: value is required", i)
		}
	case step.Expect != nil:
		if step.Expect.empty() {
			return fmt.Errorf("steps[%d].expect: at least one check is required", i)
		}
	}
	return nil
}
