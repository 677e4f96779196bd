package coverage

import (
	"sort"
	"strings"

	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// Mode selects the coverage predicate.
type Mode int

const (
	// ModeLength requires a share of the trajectory inside the zone.
	ModeLength Mode = iota
	// ModeEntryPoint requires only the entry point inside the zone.
	ModeEntryPoint
)

func (m Mode) String() string {
	if m == ModeEntryPoint {
		return "entry_point"
	}
	return "length"
}

// ParseMode parses "length" or "entry_point".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "length":
		return ModeLength, nil
	case "entry_point", "entry-point", "point":
		return ModeEntryPoint, nil
	}
	return 0, validation.NewConfigurationError("mode", s, "expected length or entry_point")
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Options configures the coverage predicate.
type Options struct {
	// Percent is the minimum share (0-100) of trajectory length inside
	// the zone in ModeLength.
	Percent float64
	Mode    Mode
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.Percent < 0 || o.Percent > 100 {
		return validation.NewConfigurationError("percent", o.Percent, "must be within [0, 100]")
	}
	if o.Mode != ModeLength && o.Mode != ModeEntryPoint {
		return validation.NewConfigurationError("mode", int(o.Mode), "unknown coverage mode")
	}
	return nil
}

// Covers reports whether the zone observes w. In ModeLength the trajectory
// must intersect the zone before the length threshold applies, so a zero
// percent threshold still needs contact.
func Covers(z Zone, w well.Well, opts Options) bool {
	if opts.Mode == ModeEntryPoint {
		return z.Polygon.Contains(w.EntryPoint())
	}
	if !Intersects(z.Polygon, w.Segment()) {
		return false
	}
	return LengthFraction(z.Polygon, w.Segment()) >= opts.Percent/100-1e-12
}

// Relation is the bipartite covers/covered-by mapping between monitoring
// candidates and producers. Name lists are sorted.
type Relation struct {
	Covers     map[string][]string `json:"covers"`
	CoveredBy  map[string][]string `json:"covered_by"`
	Candidates []string            `json:"candidates"`
	Producers  []string            `json:"producers"`
}

// Build evaluates every candidate zone against every producer.
func Build(zones []Zone, producers []well.Well, opts Options) (*Relation, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	rel := &Relation{
		Covers:    make(map[string][]string, len(zones)),
		CoveredBy: make(map[string][]string, len(producers)),
	}
	for _, p := range producers {
		rel.CoveredBy[p.Name] = []string{}
		rel.Producers = append(rel.Producers, p.Name)
	}
	for _, z := range zones {
		covered := []string{}
		for _, p := range producers {
			if Covers(z, p, opts) {
				covered = append(covered, p.Name)
				rel.CoveredBy[p.Name] = append(rel.CoveredBy[p.Name], z.Well.Name)
			}
		}
		sort.Strings(covered)
		rel.Covers[z.Well.Name] = covered
		rel.Candidates = append(rel.Candidates, z.Well.Name)
	}
	for name := range rel.CoveredBy {
		sort.Strings(rel.CoveredBy[name])
	}
	sort.Strings(rel.Candidates)
	sort.Strings(rel.Producers)
	return rel, nil
}

// Cardinality is the number of candidates covering the producer.
func (r *Relation) Cardinality(producer string) int {
	return len(r.CoveredBy[producer])
}

// Isolated returns the sorted producers no candidate covers.
func (r *Relation) Isolated() []string {
	var out []string
	for _, p := range r.Producers {
		if len(r.CoveredBy[p]) == 0 {
			out = append(out, p)
		}
	}
	return out
}

// Covered returns the sorted producers at least one candidate covers.
func (r *Relation) Covered() []string {
	var out []string
	for _, p := range r.Producers {
		if len(r.CoveredBy[p]) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// BuildMutual evaluates producer zones against the other producers. A
// producer never covers itself.
func BuildMutual(zones []Zone, producers []well.Well, opts Options) (*Relation, error) {
	rel, err := Build(zones, producers, opts)
	if err != nil {
		return nil, err
	}
	for c, ps := range rel.Covers {
		rel.Covers[c] = remove(ps, c)
	}
	for p, cs := range rel.CoveredBy {
		rel.CoveredBy[p] = remove(cs, p)
	}
	return rel, nil
}

func remove(names []string, name string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}
