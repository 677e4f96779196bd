// Package firstrow finds the wells geometrically visible from a reference
// well: every neighbour is projected onto an angular sector around the
// reference point and sectors hidden behind nearer ones are dropped.
package firstrow

import (
	"math"
	"sort"

	"github.com/Vladislav-Dmitriev/well-net/pkg/geo"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// Angles holds the sector construction parameters. Angles are degrees.
type Angles struct {
	// Vertical opens a point well into a pseudo-sector of ±Vertical.
	Vertical float64 `json:"vertical_well_angle"`
	// MaxOverlapPercent is the share of a farther sector that may be hidden
	// before the farther well leaves the first row.
	MaxOverlapPercent float64 `json:"max_overlap_percent"`
	HorizontalT1      float64 `json:"angle_horizontal_t1"`
	HorizontalT3      float64 `json:"angle_horizontal_t3"`
}

// Validate rejects angles the construction cannot work with.
func (a Angles) Validate() error {
	switch {
	case a.Vertical < 0 || a.Vertical >= 90 || math.IsNaN(a.Vertical):
		return validation.NewConfigurationError("vertical_well_angle", a.Vertical, "must be within [0, 90)")
	case a.MaxOverlapPercent < 0 || a.MaxOverlapPercent > 100 || math.IsNaN(a.MaxOverlapPercent):
		return validation.NewConfigurationError("max_overlap_percent", a.MaxOverlapPercent, "must be within [0, 100]")
	case a.HorizontalT1 < 0 || a.HorizontalT1 >= 180 || math.IsNaN(a.HorizontalT1):
		return validation.NewConfigurationError("angle_horizontal_t1", a.HorizontalT1, "must be within [0, 180)")
	case a.HorizontalT3 < 0 || a.HorizontalT3 >= 180 || math.IsNaN(a.HorizontalT3):
		return validation.NewConfigurationError("angle_horizontal_t3", a.HorizontalT3, "must be within [0, 180)")
	}
	return nil
}

// Sector is the angular interval one neighbour subtends around a
// reference point. FiT1/FiT3 are degrees in [0, 360) after any seam
// rotation; RT1/RT3 are the corrected polar radii.
type Sector struct {
	Well     string  `json:"well"`
	FiT1     float64 `json:"fi_t1"`
	FiT3     float64 `json:"fi_t3"`
	RT1      float64 `json:"r_t1"`
	RT3      float64 `json:"r_t3"`
	RCenter  float64 `json:"r_center"`
	Distance float64 `json:"distance"`
}

// Min is the lower interval bound.
func (s Sector) Min() float64 { return math.Min(s.FiT1, s.FiT3) }

// Max is the upper interval bound.
func (s Sector) Max() float64 { return math.Max(s.FiT1, s.FiT3) }

// Straddles reports whether the interval wraps over the 0/360 seam.
func (s Sector) Straddles() bool {
	lo, hi := s.Min(), s.Max()
	return lo >= 0 && lo <= 90 && hi >= 270 && hi <= 360
}

func (s Sector) touches(lo, hi float64) bool {
	return (s.FiT1 >= lo && s.FiT1 <= hi) || (s.FiT3 >= lo && s.FiT3 <= hi)
}

// Sectors projects wells onto sectors around origin. Vertical wells get a
// radius widened by 1/cos(Vertical) and a ±Vertical pseudo-arc; horizontal
// wells get both ends pushed apart by HorizontalT1/HorizontalT3. Angular
// corrections are skipped for wells touching the origin.
func Sectors(origin geo.Point2D, wells []well.Well, a Angles) ([]Sector, error) {
	va := geo.Radians(a.Vertical)
	a1 := geo.Radians(a.HorizontalT1)
	a3 := geo.Radians(a.HorizontalT3)

	out := make([]Sector, 0, len(wells))
	for _, w := range wells {
		r1, f1 := w.Head.Sub(origin).Polar()
		r3, f3 := w.Toe.Sub(origin).Polar()
		dist := w.Segment().DistanceToPoint(origin)

		switch w.Kind {
		case well.Vertical:
			r1 /= math.Cos(va)
			r3 = r1
			if dist > 0 {
				f1 += va
				f3 -= va
			}
		case well.Horizontal:
			if dist > 0 {
				if f1 >= f3 {
					f1 += a1
				} else {
					f1 -= a1
				}
				if f3 >= f1 {
					f3 += a3
				} else {
					f3 -= a3
				}
			}
		default:
			return nil, validation.NewConfigurationError("kind", int(w.Kind), "unknown well kind for "+w.Name)
		}

		center := geo.MidPoint(geo.FromPolar(r1, f1), geo.FromPolar(r3, f3))
		out = append(out, Sector{
			Well:     w.Name,
			FiT1:     geo.NormalizeDegrees(geo.Degrees(f1)),
			FiT3:     geo.NormalizeDegrees(geo.Degrees(f3)),
			RT1:      r1,
			RT3:      r3,
			RCenter:  center.Length(),
			Distance: dist,
		})
	}
	return out, nil
}

// Anomaly records a neighbour dropped because seam rotation did not
// converge.
type Anomaly struct {
	Reference string      `json:"reference"`
	Point     geo.Point2D `json:"point"`
	Dropped   string      `json:"dropped"`
	Attempts  int         `json:"attempts"`
}

// ResolveWraparound rotates all sectors until none straddles the seam.
// Each round allows as many rotations as there are sectors; when a round
// runs out the sector farthest from the reference point is dropped and a
// new round starts. The input slice is not modified.
func ResolveWraparound(sectors []Sector) ([]Sector, []Anomaly) {
	work := append([]Sector(nil), sectors...)
	var anomalies []Anomaly
	attempts := 0
	for {
		minMax, straddling := 0.0, false
		for _, s := range work {
			if s.Straddles() && (!straddling || s.Max() < minMax) {
				minMax, straddling = s.Max(), true
			}
		}
		if !straddling {
			return work, anomalies
		}
		if attempts >= len(work) {
			i := farthest(work)
			anomalies = append(anomalies, Anomaly{Dropped: work[i].Well, Attempts: attempts})
			work = append(work[:i], work[i+1:]...)
			attempts = 0
			continue
		}
		rotate(work, 360-minMax+1)
		attempts++
	}
}

func rotate(sectors []Sector, deg float64) {
	for i := range sectors {
		sectors[i].FiT1 = geo.NormalizeDegrees(sectors[i].FiT1 + deg)
		sectors[i].FiT3 = geo.NormalizeDegrees(sectors[i].FiT3 + deg)
	}
}

// farthest returns the index of the sector with the largest distance,
// ties broken by the greater name.
func farthest(sectors []Sector) int {
	best := 0
	for i, s := range sectors[1:] {
		b := sectors[best]
		if s.Distance > b.Distance || (s.Distance == b.Distance && s.Well > b.Well) {
			best = i + 1
		}
	}
	return best
}

// byCenterDesc orders sectors by r_center descending, then by name.
func byCenterDesc(sectors []Sector) []Sector {
	out := append([]Sector(nil), sectors...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RCenter != out[j].RCenter {
			return out[i].RCenter > out[j].RCenter
		}
		return out[i].Well < out[j].Well
	})
	return out
}
