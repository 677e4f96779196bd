package geo

import (
	"math"
	"sort"
)

// maxSampleCells bounds the grid used by SampledUnionArea.
const maxSampleCells = 1_000_000

// ConvexHull returns the convex hull of pts in CCW order (monotone chain).
// Collinear points on the hull boundary are dropped.
func ConvexHull(pts []Point2D) Polygon {
	if len(pts) < 3 {
		return Polygon{Vertices: append([]Point2D(nil), pts...)}
	}
	sorted := append([]Point2D(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	hull := make([]Point2D, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && orientation(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && orientation(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return Polygon{Vertices: hull[:len(hull)-1]}
}

// BufferedHull returns the convex hull of pts grown outward by distance d.
func BufferedHull(pts []Point2D, d float64) Polygon {
	if d <= 0 {
		return ConvexHull(pts)
	}
	grown := make([]Point2D, 0, len(pts)*CircleSegments)
	for _, p := range pts {
		grown = append(grown, ApproximateCircle(p, d, CircleSegments).Vertices...)
	}
	return ConvexHull(grown)
}

// SampledUnionArea estimates the area of the union of polys by sampling
// cell centers on a square grid of the given cell size. The grid is
// coarsened when it would exceed maxSampleCells.
func SampledUnionArea(polys []Polygon, cell float64) float64 {
	var boxes [][2]Point2D
	var minP, maxP Point2D
	for _, p := range polys {
		if p.IsEmpty() {
			continue
		}
		lo, hi := p.BoundingBox()
		if len(boxes) == 0 {
			minP, maxP = lo, hi
		} else {
			minP = Pt(math.Min(minP.X, lo.X), math.Min(minP.Y, lo.Y))
			maxP = Pt(math.Max(maxP.X, hi.X), math.Max(maxP.Y, hi.Y))
		}
		boxes = append(boxes, [2]Point2D{lo, hi})
	}
	if len(boxes) == 0 {
		return 0
	}
	w, h := maxP.X-minP.X, maxP.Y-minP.Y
	if w <= 0 || h <= 0 {
		return 0
	}
	if cell <= 0 || (w/cell)*(h/cell) > maxSampleCells {
		cell = math.Sqrt(w * h / maxSampleCells)
	}
	nx := int(math.Ceil(w / cell))
	ny := int(math.Ceil(h / cell))

	var live []Polygon
	for i, p := range polys {
		if !p.IsEmpty() {
			live = append(live, polys[i])
		}
	}
	hits := 0
	for iy := 0; iy < ny; iy++ {
		y := minP.Y + (float64(iy)+0.5)*cell
		for ix := 0; ix < nx; ix++ {
			pt := Pt(minP.X+(float64(ix)+0.5)*cell, y)
			for k, p := range live {
				b := boxes[k]
				if pt.X < b[0].X || pt.X > b[1].X || pt.Y < b[0].Y || pt.Y > b[1].Y {
					continue
				}
				if p.Contains(pt) {
					hits++
					break
				}
			}
		}
	}
	return float64(hits) * cell * cell
}
