package geo

import "math"

// CircleSegments is the default resolution for circle approximation.
const CircleSegments = 64

// ApproximateCircle returns a polygon approximating a circle with the given
// center, radius, and number of segments. Vertices are in CCW order.
func ApproximateCircle(center Point2D, radius float64, segments int) Polygon {
	if segments < 3 {
		segments = 3
	}
	pts := make([]Point2D, segments)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = center.Add(FromPolar(radius, angle))
	}
	return Polygon{Vertices: pts}
}

// Capsule returns the convex buffer of radius r around s with round caps,
// in CCW order. A degenerate segment yields a circle.
func Capsule(s Segment, radius float64, segments int) Polygon {
	if s.IsPoint() {
		return ApproximateCircle(s.A, radius, segments)
	}
	a := ApproximateCircle(s.A, radius, segments)
	b := ApproximateCircle(s.B, radius, segments)
	return ConvexHull(append(a.Vertices, b.Vertices...))
}

// ClipToConvex clips the subject polygon to a convex clip polygon using
// the Sutherland-Hodgman algorithm. The clipper must be CCW.
func ClipToConvex(subject, clipper Polygon) Polygon {
	if subject.IsEmpty() || clipper.IsEmpty() {
		return Polygon{}
	}
	output := make([]Point2D, len(subject.Vertices))
	copy(output, subject.Vertices)

	clipN := len(clipper.Vertices)
	for i := 0; i < clipN; i++ {
		if len(output) == 0 {
			return Polygon{}
		}
		edgeStart := clipper.Vertices[i]
		edgeEnd := clipper.Vertices[(i+1)%clipN]
		input := output
		output = make([]Point2D, 0, len(input))

		for j := 0; j < len(input); j++ {
			current := input[j]
			next := input[(j+1)%len(input)]
			curInside := isInsideEdge(current, edgeStart, edgeEnd)
			nextInside := isInsideEdge(next, edgeStart, edgeEnd)

			switch {
			case curInside && nextInside:
				output = append(output, next)
			case curInside && !nextInside:
				if ix, ok := lineIntersection(current, next, edgeStart, edgeEnd); ok {
					output = append(output, ix)
				}
			case !curInside && nextInside:
				if ix, ok := lineIntersection(current, next, edgeStart, edgeEnd); ok {
					output = append(output, ix)
				}
				output = append(output, next)
			}
		}
	}
	if len(output) < 3 {
		return Polygon{}
	}
	return Polygon{Vertices: output}
}

// ClipSegmentToConvex returns the part of s inside the convex CCW polygon
// (Cyrus-Beck). ok is false when nothing of s lies inside.
func ClipSegmentToConvex(s Segment, poly Polygon) (Segment, bool) {
	if poly.IsEmpty() {
		return Segment{}, false
	}
	d := s.B.Sub(s.A)
	tEnter, tLeave := 0.0, 1.0
	n := len(poly.Vertices)
	for i := 0; i < n; i++ {
		e := poly.Edge(i)
		normal := e.B.Sub(e.A).Perp()
		num := normal.Dot(s.A.Sub(e.A))
		den := normal.Dot(d)
		if math.Abs(den) < 1e-12 {
			if num < -1e-9 {
				return Segment{}, false
			}
			continue
		}
		t := -num / den
		if den > 0 {
			tEnter = math.Max(tEnter, t)
		} else {
			tLeave = math.Min(tLeave, t)
		}
		if tEnter > tLeave {
			return Segment{}, false
		}
	}
	return Segment{A: s.A.Lerp(s.B, tEnter), B: s.A.Lerp(s.B, tLeave)}, true
}

// isInsideEdge returns true if the point is on the inside (left) of the
// directed edge from edgeStart to edgeEnd.
func isInsideEdge(p, edgeStart, edgeEnd Point2D) bool {
	return orientation(edgeStart, edgeEnd, p) >= 0
}

// lineIntersection returns the intersection point of lines (p1→p2) and (p3→p4).
func lineIntersection(p1, p2, p3, p4 Point2D) (Point2D, bool) {
	d := (p1.X-p2.X)*(p3.Y-p4.Y) - (p1.Y-p2.Y)*(p3.X-p4.X)
	if math.Abs(d) < 1e-12 {
		return Point2D{}, false
	}
	t := ((p1.X-p3.X)*(p3.Y-p4.Y) - (p1.Y-p3.Y)*(p3.X-p4.X)) / d
	return p1.Lerp(p2, t), true
}
