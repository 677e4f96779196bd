package geo

import "math"

// Polygon is a closed ring: a contour outline, a monitoring zone or a hull.
// The edge from the last vertex back to the first is implicit.
type Polygon struct {
	Vertices []Point2D `json:"vertices" yaml:"vertices"`
}

// onBoundary is the distance under which a point counts as lying on an edge.
const onBoundary = 1e-9

func NewPolygon(pts ...Point2D) Polygon {
	return Polygon{Vertices: pts}
}

// Len is the vertex count.
func (p Polygon) Len() int { return len(p.Vertices) }

// IsEmpty reports a ring that cannot enclose area.
func (p Polygon) IsEmpty() bool { return len(p.Vertices) < 3 }

// Edge i runs from vertex i to vertex i+1, wrapping at the end.
func (p Polygon) Edge(i int) Segment {
	n := len(p.Vertices)
	return Seg(p.Vertices[i%n], p.Vertices[(i+1)%n])
}

// SignedArea is the shoelace area, positive when the ring winds
// counterclockwise.
func (p Polygon) SignedArea() float64 {
	if p.IsEmpty() {
		return 0
	}
	var twice float64
	prev := p.Vertices[len(p.Vertices)-1]
	for _, v := range p.Vertices {
		twice += prev.Cross(v)
		prev = v
	}
	return twice / 2
}

func (p Polygon) Area() float64 { return math.Abs(p.SignedArea()) }

func (p Polygon) IsCounterClockwise() bool { return p.SignedArea() > 0 }

// EnsureCCW returns p wound counterclockwise, copying only when it has to
// flip the order.
func (p Polygon) EnsureCCW() Polygon {
	if p.SignedArea() >= 0 {
		return p
	}
	return p.Reverse()
}

func (p Polygon) Reverse() Polygon {
	n := len(p.Vertices)
	out := make([]Point2D, n)
	for i, v := range p.Vertices {
		out[n-1-i] = v
	}
	return Polygon{Vertices: out}
}

// BoundingBox returns the lower-left and upper-right corners. An empty
// polygon yields two zero points.
func (p Polygon) BoundingBox() (lo, hi Point2D) {
	if len(p.Vertices) == 0 {
		return Point2D{}, Point2D{}
	}
	lo, hi = p.Vertices[0], p.Vertices[0]
	for _, v := range p.Vertices[1:] {
		lo = Pt(math.Min(lo.X, v.X), math.Min(lo.Y, v.Y))
		hi = Pt(math.Max(hi.X, v.X), math.Max(hi.Y, v.Y))
	}
	return lo, hi
}

// Contains reports whether pt lies inside the ring by even-odd ray casting.
// Points on an edge count as inside, so a well sitting exactly on a contour
// boundary belongs to that contour.
func (p Polygon) Contains(pt Point2D) bool {
	if p.IsEmpty() {
		return false
	}
	inside := false
	prev := p.Vertices[len(p.Vertices)-1]
	for _, v := range p.Vertices {
		if Seg(prev, v).DistanceToPoint(pt) < onBoundary {
			return true
		}
		if (v.Y > pt.Y) != (prev.Y > pt.Y) &&
			pt.X < (prev.X-v.X)*(pt.Y-v.Y)/(prev.Y-v.Y)+v.X {
			inside = !inside
		}
		prev = v
	}
	return inside
}
