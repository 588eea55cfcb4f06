// Package config loads pricing scenarios from YAML files and parses
// name=value parameter overrides from the command line.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lattix/lattice"
	"github.com/katalvlaran/lattix/pricing"
)

// MaxSweepPoints bounds a generated sweep range.
const MaxSweepPoints = 10000

var (
	ErrNoModel       = errors.New("config: model is required")
	ErrBadOverride   = errors.New("config: override must be name=value")
	ErrBadSweep      = errors.New("config: invalid sweep")
	ErrSweepTooLarge = errors.New("config: sweep exceeds point limit")
)

// Scenario is the on-disk scenario shape (YAML).
//
//	model: mortgage
//	params:
//	  periods: 30
//	  interestVol: 0.25
//	render:
//	  attribute: callValue
//	  layout: triangle
//	chain: [remainPrincipal]
//	sweep:
//	  param: interestVol
//	  from: 0.1
//	  to: 0.3
//	  step: 0.05
type Scenario struct {
	Model  string             `yaml:"model"`
	Params map[string]float64 `yaml:"params"`
	Render RenderConfig       `yaml:"render"`
	Chain  []string           `yaml:"chain"`
	Sweep  *SweepConfig       `yaml:"sweep"`
}

// RenderConfig selects the grid drawn after pricing.
type RenderConfig struct {
	Attribute string `yaml:"attribute"`
	Layout    string `yaml:"layout"`
}

// SweepConfig names the swept parameter and either explicit values or an
// inclusive from/to/step range.
type SweepConfig struct {
	Param  string    `yaml:"param"`
	Values []float64 `yaml:"values"`
	From   float64   `yaml:"from"`
	To     float64   `yaml:"to"`
	Step   float64   `yaml:"step"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(raw)
}

// Parse decodes and validates a YAML scenario.
func Parse(raw []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks the fields that do not depend on the model.
func (s *Scenario) Validate() error {
	if s.Model == "" {
		return ErrNoModel
	}
	if _, err := lattice.ParseLayout(s.Render.Layout); err != nil {
		return fmt.Errorf("config: render: %w", err)
	}
	if s.Sweep != nil {
		if _, err := s.Sweep.Points(); err != nil {
			return err
		}
	}

	return nil
}

// Request converts the render settings for pricing.Price.
func (s *Scenario) Request() pricing.Request {
	layout, _ := lattice.ParseLayout(s.Render.Layout)

	return pricing.Request{
		Render: s.Render.Attribute,
		Layout: layout,
		Chain:  s.Chain,
	}
}

// Merge returns the scenario params with extra laid over them.
func (s *Scenario) Merge(extra map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(s.Params)+len(extra))
	for k, v := range s.Params {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}

	return out
}

// Points expands the sweep into its input values.
// Errors: ErrBadSweep, ErrSweepTooLarge.
func (c *SweepConfig) Points() ([]float64, error) {
	if c.Param == "" {
		return nil, fmt.Errorf("%w: param is required", ErrBadSweep)
	}
	if len(c.Values) > 0 {
		return append([]float64(nil), c.Values...), nil
	}
	for _, v := range []float64{c.From, c.To, c.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: bounds must be finite", ErrBadSweep)
		}
	}
	if c.Step <= 0 || c.To < c.From {
		return nil, fmt.Errorf("%w: need step > 0 and to >= from", ErrBadSweep)
	}

	// The epsilon keeps an endpoint such as 0.3 reached in 0.1 steps.
	n := math.Floor((c.To-c.From)/c.Step+1e-9) + 1
	if n > MaxSweepPoints {
		return nil, fmt.Errorf("%w: %v points", ErrSweepTooLarge, n)
	}
	out := make([]float64, int(n))
	for i := range out {
		out[i] = c.From + float64(i)*c.Step
	}

	return out, nil
}

// ParseOverrides parses "name=value" pairs. Later pairs win.
func ParseOverrides(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadOverride, pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrBadOverride, pair, err)
		}
		out[name] = v
	}

	return out, nil
}

// FormatOverrides is the inverse of ParseOverrides, sorted by name.
func FormatOverrides(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, len(names))
	for i, name := range names {
		out[i] = name + "=" + strconv.FormatFloat(m[name], 'g', -1, 64)
	}

	return out
}
