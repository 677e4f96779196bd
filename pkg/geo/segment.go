package geo

import "math"

// Segment is a straight line between two points. A vertical well trace
// collapses to a segment with A == B.
type Segment struct {
	A Point2D `json:"a"`
	B Point2D `json:"b"`
}

// Seg is a shorthand constructor for Segment.
func Seg(a, b Point2D) Segment {
	return Segment{A: a, B: b}
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return s.A.Distance(s.B)
}

// IsPoint reports whether the segment is degenerate.
func (s Segment) IsPoint() bool {
	return s.Length() < 1e-9
}

// Midpoint returns the point halfway between A and B.
func (s Segment) Midpoint() Point2D {
	return MidPoint(s.A, s.B)
}

// ClosestPoint returns the point on s nearest to p.
func (s Segment) ClosestPoint(p Point2D) Point2D {
	d := s.B.Sub(s.A)
	lenSq := d.Dot(d)
	if lenSq < 1e-18 {
		return s.A
	}
	t := p.Sub(s.A).Dot(d) / lenSq
	t = math.Max(0, math.Min(1, t))
	return s.A.Lerp(s.B, t)
}

// DistanceToPoint returns the shortest distance from p to s.
func (s Segment) DistanceToPoint(p Point2D) float64 {
	return s.ClosestPoint(p).Distance(p)
}

// Intersects reports whether two segments share at least one point.
func (s Segment) Intersects(o Segment) bool {
	d1 := orientation(o.A, o.B, s.A)
	d2 := orientation(o.A, o.B, s.B)
	d3 := orientation(s.A, s.B, o.A)
	d4 := orientation(s.A, s.B, o.B)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	const eps = 1e-9
	return (math.Abs(d1) < eps && o.DistanceToPoint(s.A) < eps) ||
		(math.Abs(d2) < eps && o.DistanceToPoint(s.B) < eps) ||
		(math.Abs(d3) < eps && s.DistanceToPoint(o.A) < eps) ||
		(math.Abs(d4) < eps && s.DistanceToPoint(o.B) < eps)
}

// SegmentDistance returns the shortest distance between two segments,
// zero when they intersect.
func SegmentDistance(a, b Segment) float64 {
	if a.Intersects(b) {
		return 0
	}
	return math.Min(
		math.Min(b.DistanceToPoint(a.A), b.DistanceToPoint(a.B)),
		math.Min(a.DistanceToPoint(b.A), a.DistanceToPoint(b.B)),
	)
}

func orientation(a, b, p Point2D) float64 {
	return b.Sub(a).Cross(p.Sub(a))
}
