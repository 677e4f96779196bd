package well

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Vladislav-Dmitriev/well-net/pkg/geo"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
)

// Kind is the trajectory type of a well. The zero value is invalid.
type Kind int

const (
	Vertical Kind = iota + 1
	Horizontal
)

func (k Kind) String() string {
	switch k {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == Vertical || k == Horizontal
}

// ParseKind parses "vertical" or "horizontal".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical":
		return Vertical, nil
	case "horizontal":
		return Horizontal, nil
	}
	return 0, validation.NewConfigurationError("kind", s, "expected vertical or horizontal")
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, validation.NewConfigurationError("kind", int(k), "unknown well kind")
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Role is the part a well plays in the network design.
type Role int

const (
	Producer Role = iota + 1
	Injector
	Observation
)

func (r Role) String() string {
	switch r {
	case Producer:
		return "producer"
	case Injector:
		return "injector"
	case Observation:
		return "observation"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r >= Producer && r <= Observation
}

// ParseRole parses a role name. "piezometer" is accepted for observation.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "producer", "production":
		return Producer, nil
	case "injector", "injection":
		return Injector, nil
	case "observation", "piezometer":
		return Observation, nil
	}
	return 0, validation.NewConfigurationError("role", s, "expected producer, injector or observation")
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, validation.NewConfigurationError("role", int(r), "unknown well role")
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Well is an immutable, classified well. Vertical wells have Toe == Head.
type Well struct {
	Name        string      `json:"name"`
	Kind        Kind        `json:"kind"`
	Role        Role        `json:"role"`
	Head        geo.Point2D `json:"head"`
	Toe         geo.Point2D `json:"toe"`
	OilRate     float64     `json:"oil_rate"`
	FluidRate   float64     `json:"fluid_rate"`
	GasRate     float64     `json:"gas_rate,omitempty"`
	Injectivity float64     `json:"injectivity,omitempty"`
	WaterCut    float64     `json:"water_cut,omitempty"`
	Horizons    []string    `json:"horizons"`
	Oilfield    string      `json:"oilfield,omitempty"`
}

// Segment returns the head-toe trace. It is a point for vertical wells.
func (w Well) Segment() geo.Segment {
	if w.Kind == Vertical {
		return geo.Seg(w.Head, w.Head)
	}
	return geo.Seg(w.Head, w.Toe)
}

// EntryPoint is where the well enters the horizon.
func (w Well) EntryPoint() geo.Point2D {
	return w.Head
}

// Length is the horizontal trace length (0 for vertical wells).
func (w Well) Length() float64 {
	return w.Segment().Length()
}

// ReferencePoints returns the points a first row is built around:
// the head for vertical wells; head, midpoint and toe for horizontal ones.
func (w Well) ReferencePoints() []geo.Point2D {
	if w.Kind == Horizontal {
		return []geo.Point2D{w.Head, geo.MidPoint(w.Head, w.Toe), w.Toe}
	}
	return []geo.Point2D{w.Head}
}

// OnHorizon reports whether the well works the named horizon.
func (w Well) OnHorizon(h string) bool {
	for _, x := range w.Horizons {
		if x == h {
			return true
		}
	}
	return false
}

// DistanceTo returns the shortest distance between two well traces.
func (w Well) DistanceTo(o Well) float64 {
	return geo.SegmentDistance(w.Segment(), o.Segment())
}

// Record is a raw well row as supplied by data preparation. Zero
// coordinates mean "missing".
type Record struct {
	Name        string  `yaml:"name" json:"name"`
	Role        string  `yaml:"role" json:"role"`
	XT1         float64 `yaml:"x_t1" json:"x_t1"`
	YT1         float64 `yaml:"y_t1" json:"y_t1"`
	XT3         float64 `yaml:"x_t3" json:"x_t3"`
	YT3         float64 `yaml:"y_t3" json:"y_t3"`
	OilRate     float64 `yaml:"oil_rate" json:"oil_rate"`
	FluidRate   float64 `yaml:"fluid_rate" json:"fluid_rate"`
	GasRate     float64 `yaml:"gas_rate" json:"gas_rate"`
	Injectivity float64 `yaml:"injectivity" json:"injectivity"`
	WaterCut    float64 `yaml:"water_cut" json:"water_cut"`
	Horizon     string  `yaml:"horizon" json:"horizon"`
	Oilfield    string  `yaml:"oilfield" json:"oilfield"`
}

// Classify turns a raw record into a Well. A missing toe takes the head
// coordinates and vice versa; a trace shorter than minHorizontalLength
// makes the well vertical at its head.
func Classify(r Record, minHorizontalLength float64) (Well, error) {
	if strings.TrimSpace(r.Name) == "" {
		return Well{}, validation.NewConfigurationError("name", r.Name, "well name is empty")
	}
	role, err := ParseRole(r.Role)
	if err != nil {
		return Well{}, fmt.Errorf("well %s: %w", r.Name, err)
	}
	if minHorizontalLength < 0 {
		return Well{}, validation.NewConfigurationError("min_horizontal_length", minHorizontalLength, "must be >= 0")
	}

	xt1, yt1, xt3, yt3 := r.XT1, r.YT1, r.XT3, r.YT3
	if xt3 == 0 {
		xt3 = xt1
	}
	if yt3 == 0 {
		yt3 = yt1
	}
	if xt1 == 0 {
		xt1 = xt3
	}
	if yt1 == 0 {
		yt1 = yt3
	}
	head := geo.Pt(xt1, yt1)
	toe := geo.Pt(xt3, yt3)

	w := Well{
		Name:        strings.TrimSpace(r.Name),
		Role:        role,
		Head:        head,
		Toe:         toe,
		OilRate:     r.OilRate,
		FluidRate:   r.FluidRate,
		GasRate:     r.GasRate,
		Injectivity: r.Injectivity,
		WaterCut:    r.WaterCut,
		Horizons:    SplitHorizons(r.Horizon),
		Oilfield:    strings.ToUpper(strings.TrimSpace(r.Oilfield)),
	}
	if head.Distance(toe) >= minHorizontalLength && head.Distance(toe) > 0 {
		w.Kind = Horizontal
	} else {
		w.Kind = Vertical
		w.Toe = head
	}
	return w, nil
}

// SplitHorizons splits a comma separated horizon list, trimming blanks
// and dropping duplicates. Order is preserved.
func SplitHorizons(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		h := strings.TrimSpace(part)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

// Names returns the sorted names of wells.
func Names(wells []Well) []string {
	out := make([]string, len(wells))
	for i, w := range wells {
		out[i] = w.Name
	}
	sort.Strings(out)
	return out
}

// ByRole returns the wells with the given role, in input order.
func ByRole(wells []Well, role Role) []Well {
	var out []Well
	for _, w := range wells {
		if w.Role == role {
			out = append(out, w)
		}
	}
	return out
}

// Index maps well names to wells.
func Index(wells []Well) map[string]Well {
	m := make(map[string]Well, len(wells))
	for _, w := range wells {
		m[w.Name] = w
	}
	return m
}

// MeanNonZeroOilRate averages the oil rate over producers with a
// positive rate. It returns +Inf when there are none so that a
// "rate <= mean" filter keeps every producer.
func MeanNonZeroOilRate(wells []Well) float64 {
	sum, n := 0.0, 0
	for _, w := range wells {
		if w.Role == Producer && w.OilRate > 0 {
			sum += w.OilRate
			n++
		}
	}
	if n == 0 {
		return math.Inf(1)
	}
	return sum / float64(n)
}
