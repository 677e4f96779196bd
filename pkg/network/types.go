// Package network selects the reference monitoring wells of a field. Each
// (contour, horizon, radius coefficient) triple is designed on its own and
// results are merged by key.
package network

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Vladislav-Dmitriev/well-net/pkg/firstrow"
	"github.com/Vladislav-Dmitriev/well-net/pkg/pvt"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// Key identifies one design triple.
type Key struct {
	Contour     string  `json:"contour"`
	Horizon     string  `json:"horizon"`
	Coefficient float64 `json:"coefficient"`
}

// String renders the key as contour/horizon/coefficient.
func (k Key) String() string {
	return k.Contour + "/" + k.Horizon + "/" + strconv.FormatFloat(k.Coefficient, 'g', -1, 64)
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the String form. The contour name may itself
// contain slashes.
func (k *Key) UnmarshalText(b []byte) error {
	s := string(b)
	i := strings.LastIndex(s, "/")
	if i < 0 {
		return fmt.Errorf("malformed triple key %q", s)
	}
	coef, err := strconv.ParseFloat(s[i+1:], 64)
	if err != nil {
		return fmt.Errorf("malformed triple key %q: %w", s, err)
	}
	rest := s[:i]
	j := strings.LastIndex(rest, "/")
	if j < 0 {
		return fmt.Errorf("malformed triple key %q", s)
	}
	*k = Key{Contour: rest[:j], Horizon: rest[j+1:], Coefficient: coef}
	return nil
}

// Less orders keys by contour, horizon, then coefficient.
func (k Key) Less(o Key) bool {
	if k.Contour != o.Contour {
		return k.Contour < o.Contour
	}
	if k.Horizon != o.Horizon {
		return k.Horizon < o.Horizon
	}
	return k.Coefficient < o.Coefficient
}

// Selected is one monitoring well of a designed network.
type Selected struct {
	Name string    `json:"name"`
	Role well.Role `json:"role"`
	Kind well.Kind `json:"kind"`
	// Forced wells are the only coverer of some producer.
	Forced bool     `json:"forced"`
	Covers []string `json:"covers"`

	MinDistance       float64    `json:"min_distance"`
	TimeCoefficient   float64    `json:"time_coefficient"`
	CoefficientSource pvt.Source `json:"coefficient_source,omitempty"`
	ResearchTime      float64    `json:"research_time"`
	OilLoss           float64    `json:"oil_loss"`
	GasLoss           float64    `json:"gas_loss"`
	InjectionLoss     float64    `json:"injection_loss"`

	// SurveyYear is 0 for the main network and 1 or 2 for wells added to
	// survey blind-zone producers.
	SurveyYear int `json:"survey_year"`
}

// Stats summarise one triple.
type Stats struct {
	Producers   int `json:"producers"`
	Injectors   int `json:"injectors"`
	Observation int `json:"observation"`

	ProducerShare    float64 `json:"producer_share"`
	InjectorShare    float64 `json:"injector_share"`
	ObservationShare float64 `json:"observation_share"`

	// AreaCoverage is the share of the buffered well hull covered by the
	// selected zones.
	AreaCoverage float64 `json:"area_coverage"`

	DefaultCoefficients int `json:"default_coefficients"`
	MissingCoefficients int `json:"missing_coefficients"`
}

// TripleResult is the designed network of one triple.
type TripleResult struct {
	Key        Key     `json:"key"`
	MeanRadius float64 `json:"mean_radius"`
	ZoneRadius float64 `json:"zone_radius"`
	FellBack   bool    `json:"fell_back"`

	Selected   []Selected `json:"selected"`
	NotCovered []string   `json:"not_covered"`
	BlindZone  []string   `json:"blind_zone,omitempty"`

	// FirstRow maps each injector to its first-row wells.
	FirstRow  map[string][]string `json:"first_row"`
	Stats     Stats               `json:"stats"`
	Anomalies []firstrow.Anomaly  `json:"anomalies,omitempty"`
	Duration  time.Duration       `json:"duration"`
}

// Names returns the distinct selected well names, sorted.
func (t *TripleResult) Names() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range t.Selected {
		if !seen[s.Name] {
			seen[s.Name] = true
			out = append(out, s.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Result holds every triple of a design run.
type Result struct {
	Project  string                `json:"project"`
	Triples  map[Key]*TripleResult `json:"triples"`
	Failures map[Key]string        `json:"failures,omitempty"`
	// Skipped lists the triples with no producers. They are still in
	// Triples with an empty network.
	Skipped []Key `json:"skipped,omitempty"`
}

// Keys returns the keys of the designed triples in order.
func (r *Result) Keys() []Key {
	return sortedKeys(r.Triples)
}

// FailedKeys returns the keys of the failed triples in order.
func (r *Result) FailedKeys() []Key {
	return sortedKeys(r.Failures)
}

func sortedKeys[V any](m map[Key]V) []Key {
	out := make([]Key, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
