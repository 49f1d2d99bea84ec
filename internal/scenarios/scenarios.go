// Package scenarios holds the named patient presets offered to callers.
package scenarios

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Skufu/ousia/internal/engine"
)

//go:embed scenarios.yaml
var catalogYAML []byte

var ErrNotFound = errors.New("scenario not found")

type Scenario struct {
	Key     string         `yaml:"key" json:"key"`
	Name    string         `yaml:"name" json:"name"`
	Patient engine.Patient `yaml:"patient" json:"patient"`
}

type catalogFile struct {
	Default   string     `yaml:"default"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Catalog is read-only after Load.
type Catalog struct {
	defaultKey string
	scenarios  []Scenario
	byKey      map[string]int
}

// Load parses the embedded catalogue.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse builds a catalogue from YAML. Every preset must be a valid patient.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal scenarios: %w", err)
	}

	c := &Catalog{
		defaultKey: f.Default,
		scenarios:  make([]Scenario, 0, len(f.Scenarios)),
		byKey:      make(map[string]int, len(f.Scenarios)),
	}
	for _, s := range f.Scenarios {
		if s.Key == "" {
			return nil, fmt.Errorf("scenario %q has no key", s.Name)
		}
		if _, dup := c.byKey[s.Key]; dup {
			return nil, fmt.Errorf("duplicate scenario key %q", s.Key)
		}
		if s.Patient.Symptoms == nil {
			s.Patient.Symptoms = []engine.Symptom{}
		}
		if s.Patient.Contraindications == nil {
			s.Patient.Contraindications = []engine.Contraindication{}
		}
		if err := engine.ValidatePatient(s.Patient); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Key, err)
		}
		c.byKey[s.Key] = len(c.scenarios)
		c.scenarios = append(c.scenarios, s)
	}
	if _, ok := c.byKey[c.defaultKey]; !ok {
		return nil, fmt.Errorf("default scenario %q: %w", c.defaultKey, ErrNotFound)
	}
	return c, nil
}

// List returns the presets in catalogue order.
func (c *Catalog) List() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	for i, s := range c.scenarios {
		out[i] = s.clone()
	}
	return out
}

func (c *Catalog) Lookup(key string) (Scenario, error) {
	i, ok := c.byKey[key]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return c.scenarios[i].clone(), nil
}

// Default returns the blank-form preset.
func (c *Catalog) Default() Scenario {
	return c.scenarios[c.byKey[c.defaultKey]].clone()
}

func (s Scenario) clone() Scenario {
	s.Patient.Symptoms = append([]engine.Symptom{}, s.Patient.Symptoms...)
	s.Patient.Contraindications = append([]engine.Contraindication{}, s.Patient.Contraindications...)
	return s
}
