// Package pvt supplies the per-well time coefficient that converts a
// squared distance into a pressure-survey duration.
package pvt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// ErrNoCoefficient is returned when no entry and no default apply.
var ErrNoCoefficient = errors.New("no time coefficient")

// Source tells where a coefficient came from.
type Source string

const (
	SourceWell     Source = "well"
	SourceOilfield Source = "oilfield"
	SourceHorizon  Source = "horizon"
	SourceDefault  Source = "default"
)

// Coefficient is a time coefficient in days per square meter.
type Coefficient struct {
	Value  float64 `json:"value"`
	Source Source  `json:"source"`
}

// Provider looks up the time coefficient for a well on a horizon.
type Provider interface {
	Coefficient(w well.Well, horizon string) (Coefficient, error)
}

// Table is a YAML-backed Provider. Lookup order: well, oilfield+horizon,
// horizon, default.
type Table struct {
	Default   float64                       `yaml:"default" json:"default"`
	Horizons  map[string]float64            `yaml:"horizons" json:"horizons,omitempty"`
	Oilfields map[string]map[string]float64 `yaml:"oilfields" json:"oilfields,omitempty"`
	Wells     map[string]float64            `yaml:"wells" json:"wells,omitempty"`
}

// Coefficient implements Provider.
func (t *Table) Coefficient(w well.Well, horizon string) (Coefficient, error) {
	if t == nil {
		return Coefficient{}, ErrNoCoefficient
	}
	if v, ok := t.Wells[w.Name]; ok {
		return Coefficient{Value: v, Source: SourceWell}, nil
	}
	if byHorizon, ok := t.Oilfields[strings.ToUpper(w.Oilfield)]; ok {
		if v, ok := byHorizon[horizon]; ok {
			return Coefficient{Value: v, Source: SourceOilfield}, nil
		}
	}
	if v, ok := t.Horizons[horizon]; ok {
		return Coefficient{Value: v, Source: SourceHorizon}, nil
	}
	if t.Default > 0 {
		return Coefficient{Value: t.Default, Source: SourceDefault}, nil
	}
	return Coefficient{}, fmt.Errorf("well %s, horizon %s: %w", w.Name, horizon, ErrNoCoefficient)
}

// Validate rejects negative coefficients.
func (t *Table) Validate() error {
	if t.Default < 0 {
		return fmt.Errorf("pvt default: negative coefficient %g", t.Default)
	}
	for h, v := range t.Horizons {
		if v < 0 {
			return fmt.Errorf("pvt horizon %s: negative coefficient %g", h, v)
		}
	}
	for f, m := range t.Oilfields {
		for h, v := range m {
			if v < 0 {
				return fmt.Errorf("pvt oilfield %s horizon %s: negative coefficient %g", f, h, v)
			}
		}
	}
	for n, v := range t.Wells {
		if v < 0 {
			return fmt.Errorf("pvt well %s: negative coefficient %g", n, v)
		}
	}
	return nil
}

// LoadTable reads a coefficient table from a YAML file. Oilfield keys are
// upper-cased to match classified wells.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pvt file: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes a coefficient table from YAML.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing pvt table: %w", err)
	}
	if len(t.Oilfields) > 0 {
		upper := make(map[string]map[string]float64, len(t.Oilfields))
		for k, v := range t.Oilfields {
			upper[strings.ToUpper(k)] = v
		}
		t.Oilfields = upper
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// ResearchTime is the survey duration in days: coef * minDistance^2.
func ResearchTime(coef, minDistance float64) float64 {
	return coef * minDistance * minDistance
}
