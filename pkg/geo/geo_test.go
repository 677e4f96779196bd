package geo

import (
	"math"
	"testing"
)

const tolerance = 0.01

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// --- Point2D tests ---

func TestPointDistance(t *testing.T) {
	a := Pt(0, 0)
	b := Pt(3, 4)
	if !approxEqual(a.Distance(b), 5.0, tolerance) {
		t.Errorf("expected distance 5.0, got %f", a.Distance(b))
	}
}

func TestPointAngle(t *testing.T) {
	p := Pt(1, 0)
	if !approxEqual(p.Angle(), 0, tolerance) {
		t.Errorf("expected angle 0, got %f", p.Angle())
	}
	p2 := Pt(0, 1)
	if !approxEqual(p2.Angle(), math.Pi/2, tolerance) {
		t.Errorf("expected angle pi/2, got %f", p2.Angle())
	}
}

func TestPolarRoundTrip(t *testing.T) {
	p := FromPolar(10, Radians(135))
	r, phi := p.Polar()
	if !approxEqual(r, 10, tolerance) || !approxEqual(Degrees(phi), 135, tolerance) {
		t.Errorf("expected (10, 135deg), got (%f, %fdeg)", r, Degrees(phi))
	}
}

func TestNormalizeDegrees(t *testing.T) {
	cases := map[float64]float64{
		-10:  350,
		0:    0,
		360:  0,
		725:  5,
		-370: 350,
	}
	for in, want := range cases {
		if got := NormalizeDegrees(in); !approxEqual(got, want, 1e-9) {
			t.Errorf("NormalizeDegrees(%f): expected %f, got %f", in, want, got)
		}
	}
}

func TestPointLerp(t *testing.T) {
	a := Pt(0, 0)
	b := Pt(10, 10)
	mid := a.Lerp(b, 0.5)
	if !approxEqual(mid.X, 5, tolerance) || !approxEqual(mid.Y, 5, tolerance) {
		t.Errorf("expected (5,5), got (%f,%f)", mid.X, mid.Y)
	}
}

// --- Segment tests ---

func TestSegmentDistanceToPoint(t *testing.T) {
	s := Seg(Pt(0, 0), Pt(10, 0))
	if d := s.DistanceToPoint(Pt(5, 3)); !approxEqual(d, 3, tolerance) {
		t.Errorf("expected 3, got %f", d)
	}
	if d := s.DistanceToPoint(Pt(13, 4)); !approxEqual(d, 5, tolerance) {
		t.Errorf("expected 5 past the end, got %f", d)
	}
	p := Seg(Pt(1, 1), Pt(1, 1))
	if d := p.DistanceToPoint(Pt(4, 5)); !approxEqual(d, 5, tolerance) {
		t.Errorf("expected 5 for degenerate segment, got %f", d)
	}
}

func TestSegmentDistance(t *testing.T) {
	a := Seg(Pt(0, 0), Pt(10, 0))
	b := Seg(Pt(0, 5), Pt(10, 5))
	if d := SegmentDistance(a, b); !approxEqual(d, 5, tolerance) {
		t.Errorf("expected 5 between parallel segments, got %f", d)
	}
	c := Seg(Pt(5, -5), Pt(5, 5))
	if d := SegmentDistance(a, c); d != 0 {
		t.Errorf("expected 0 for crossing segments, got %f", d)
	}
	pt := Seg(Pt(20, 0), Pt(20, 0))
	if d := SegmentDistance(pt, a); !approxEqual(d, 10, tolerance) {
		t.Errorf("expected 10 from point to segment, got %f", d)
	}
}

// --- Polygon tests ---

func TestPolygonAreaSquare(t *testing.T) {
	sq := NewPolygon(Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10))
	if area := sq.Area(); !approxEqual(area, 100, tolerance) {
		t.Errorf("expected area 100, got %f", area)
	}
	if !sq.IsCounterClockwise() {
		t.Error("expected CCW winding")
	}
	if sq.Reverse().IsCounterClockwise() {
		t.Error("expected reversed square to be CW")
	}
}

func TestPolygonEnsureCCW(t *testing.T) {
	tri := NewPolygon(Pt(-3, 2), Pt(7, -1), Pt(4, 9))
	if !tri.Reverse().EnsureCCW().IsCounterClockwise() {
		t.Error("expected EnsureCCW to restore counterclockwise winding")
	}
}

func TestPolygonContains(t *testing.T) {
	sq := NewPolygon(Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10))
	if !sq.Contains(Pt(5, 5)) {
		t.Error("expected (5,5) inside square")
	}
	if sq.Contains(Pt(15, 5)) {
		t.Error("expected (15,5) outside square")
	}
	if !sq.Contains(Pt(10, 5)) {
		t.Error("expected boundary point to count as inside")
	}
}

func TestPolygonBoundingBox(t *testing.T) {
	tri := NewPolygon(Pt(1, 2), Pt(5, -3), Pt(4, 8))
	lo, hi := tri.BoundingBox()
	if lo != Pt(1, -3) || hi != Pt(5, 8) {
		t.Errorf("expected (1,-3)-(5,8), got %v-%v", lo, hi)
	}
}

// --- Zone construction tests ---

func TestApproximateCircleArea(t *testing.T) {
	c := ApproximateCircle(Pt(0, 0), 100, CircleSegments)
	expected := math.Pi * 100 * 100
	if math.Abs(c.Area()-expected)/expected > 0.01 {
		t.Errorf("expected area ~%f, got %f", expected, c.Area())
	}
	if !c.IsCounterClockwise() {
		t.Error("expected CCW circle")
	}
}

func TestCapsuleArea(t *testing.T) {
	s := Seg(Pt(0, 0), Pt(200, 0))
	c := Capsule(s, 50, CircleSegments)
	expected := 200*100 + math.Pi*50*50
	if math.Abs(c.Area()-expected)/expected > 0.01 {
		t.Errorf("expected capsule area ~%f, got %f", expected, c.Area())
	}
	if !c.Contains(Pt(100, 49)) || c.Contains(Pt(100, 51)) {
		t.Error("capsule boundary misplaced")
	}
	if !c.Contains(Pt(-49, 0)) || c.Contains(Pt(-51, 0)) {
		t.Error("capsule cap misplaced")
	}
}

func TestCapsuleDegenerate(t *testing.T) {
	c := Capsule(Seg(Pt(3, 3), Pt(3, 3)), 10, CircleSegments)
	if len(c.Vertices) != CircleSegments {
		t.Errorf("expected a %d-gon, got %d vertices", CircleSegments, len(c.Vertices))
	}
}

// --- Clipping tests ---

func TestClipToConvexPartialOverlap(t *testing.T) {
	a := NewPolygon(Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10))
	b := NewPolygon(Pt(5, 5), Pt(15, 5), Pt(15, 15), Pt(5, 15))
	clipped := ClipToConvex(a, b)
	if !approxEqual(clipped.Area(), 25, tolerance) {
		t.Errorf("expected overlap 25, got %f", clipped.Area())
	}
}

func TestClipToConvexNoOverlap(t *testing.T) {
	a := NewPolygon(Pt(0, 0), Pt(1, 0), Pt(1, 1), Pt(0, 1))
	b := NewPolygon(Pt(5, 5), Pt(6, 5), Pt(6, 6), Pt(5, 6))
	if clipped := ClipToConvex(a, b); !clipped.IsEmpty() {
		t.Errorf("expected empty polygon, got %d vertices", clipped.Len())
	}
}

func TestClipSegmentToConvex(t *testing.T) {
	sq := NewPolygon(Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10))

	in, ok := ClipSegmentToConvex(Seg(Pt(-5, 5), Pt(15, 5)), sq)
	if !ok || !approxEqual(in.Length(), 10, tolerance) {
		t.Errorf("expected 10m inside, got %f (ok=%v)", in.Length(), ok)
	}

	if _, ok := ClipSegmentToConvex(Seg(Pt(-5, 20), Pt(15, 20)), sq); ok {
		t.Error("expected segment above square to be rejected")
	}

	in, ok = ClipSegmentToConvex(Seg(Pt(2, 2), Pt(4, 4)), sq)
	if !ok || !approxEqual(in.Length(), math.Sqrt(8), tolerance) {
		t.Errorf("expected fully inside segment unchanged, got %f", in.Length())
	}
}

// --- Hull tests ---

func TestConvexHull(t *testing.T) {
	pts := []Point2D{Pt(0, 0), Pt(10, 0), Pt(5, 5), Pt(10, 10), Pt(0, 10), Pt(5, 0)}
	h := ConvexHull(pts)
	if h.Len() != 4 {
		t.Errorf("expected 4 hull vertices, got %d", h.Len())
	}
	if !h.IsCounterClockwise() {
		t.Error("expected CCW hull")
	}
	if !approxEqual(h.Area(), 100, tolerance) {
		t.Errorf("expected hull area 100, got %f", h.Area())
	}
}

func TestBufferedHull(t *testing.T) {
	h := BufferedHull([]Point2D{Pt(0, 0)}, 10)
	if math.Abs(h.Area()-math.Pi*100)/(math.Pi*100) > 0.01 {
		t.Errorf("expected buffered point to be a circle, got area %f", h.Area())
	}
}

func TestSampledUnionArea(t *testing.T) {
	a := NewPolygon(Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10))
	b := NewPolygon(Pt(5, 0), Pt(15, 0), Pt(15, 10), Pt(5, 10))
	area := SampledUnionArea([]Polygon{a, b}, 0.1)
	if !approxEqual(area, 150, 1) {
		t.Errorf("expected union area ~150, got %f", area)
	}
	if got := SampledUnionArea(nil, 1); got != 0 {
		t.Errorf("expected 0 for no polygons, got %f", got)
	}
}
