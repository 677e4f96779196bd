package coverage

import (
	"math"

	"github.com/Vladislav-Dmitriev/well-net/pkg/geo"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// Zone is the influence area of one monitoring candidate at a given
// radius. Zones are rebuilt, never edited, when the radius changes.
type Zone struct {
	Well    well.Well
	Radius  float64
	Polygon geo.Polygon
}

// NewZone buffers the well trace by radius*coeff: a circle around a
// vertical well, a round-capped capsule along a horizontal one.
func NewZone(w well.Well, radius, coeff float64) (Zone, error) {
	if radius < 0 || math.IsNaN(radius) {
		return Zone{}, validation.NewConfigurationError("radius", radius, "must be >= 0")
	}
	if coeff < 0 || math.IsNaN(coeff) {
		return Zone{}, validation.NewConfigurationError("coefficient", coeff, "must be >= 0")
	}
	r := radius * coeff
	z := Zone{Well: w, Radius: r}
	switch w.Kind {
	case well.Vertical:
		z.Polygon = geo.ApproximateCircle(w.Head, r, geo.CircleSegments)
	case well.Horizontal:
		z.Polygon = geo.Capsule(geo.Seg(w.Head, w.Toe), r, geo.CircleSegments)
	default:
		return Zone{}, validation.NewConfigurationError("kind", int(w.Kind), "unknown well kind for "+w.Name)
	}
	return z, nil
}

// NewZones builds one zone per well.
func NewZones(wells []well.Well, radius, coeff float64) ([]Zone, error) {
	zones := make([]Zone, 0, len(wells))
	for _, w := range wells {
		z, err := NewZone(w, radius, coeff)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// Intersects reports whether s touches the convex zone polygon. A
// degenerate segment intersects when its point lies inside.
func Intersects(zone geo.Polygon, s geo.Segment) bool {
	if zone.IsEmpty() {
		return false
	}
	if s.IsPoint() {
		return zone.Contains(s.A)
	}
	_, ok := geo.ClipSegmentToConvex(s, zone)
	return ok
}

// LengthFraction is the share of s lying inside the convex zone polygon.
// A degenerate segment counts as 1 when inside and 0 otherwise.
func LengthFraction(zone geo.Polygon, s geo.Segment) float64 {
	if zone.IsEmpty() {
		return 0
	}
	if s.IsPoint() {
		if zone.Contains(s.A) {
			return 1
		}
		return 0
	}
	in, ok := geo.ClipSegmentToConvex(s, zone)
	if !ok {
		return 0
	}
	return math.Min(1, in.Length()/s.Length())
}
