package scene2d

import (
	"fmt"

	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
)

// Validate performs structural checks on an assembled scene: unique well
// names, zones and links that refer to wells in the scene, and bounds that
// enclose every well.
func Validate(s *Scene2D) *validation.Report {
	r := validation.NewReport()
	if s == nil {
		r.AddError(validation.Result{Level: validation.LevelGeometry, Message: "scene is nil"})
		return r
	}

	names := make(map[string]bool, len(s.Wells))
	for i, w := range s.Wells {
		if names[w.Name] {
			r.AddError(validation.Result{
				Level:   validation.LevelGeometry,
				Message: fmt.Sprintf("duplicate well %s", w.Name),
				Path:    fmt.Sprintf("wells[%d]", i),
			})
		}
		names[w.Name] = true
		for _, c := range [][2]float64{w.Head, w.Toe} {
			if !s.Bounds.contains(c) {
				r.AddError(validation.Result{
					Level:       validation.LevelGeometry,
					Message:     fmt.Sprintf("well %s lies outside the scene bounds", w.Name),
					Path:        fmt.Sprintf("wells[%d]", i),
					ActualValue: c,
				})
				break
			}
		}
	}

	for i, z := range s.Zones {
		if !names[z.Well] {
			r.AddError(validation.Result{
				Level:   validation.LevelGeometry,
				Message: fmt.Sprintf("zone of unknown well %s", z.Well),
				Path:    fmt.Sprintf("zones[%d]", i),
			})
		}
		if len(z.Polygon) < 3 {
			r.AddWarning(validation.Result{
				Level:   validation.LevelGeometry,
				Message: fmt.Sprintf("zone of %s is degenerate", z.Well),
				Path:    fmt.Sprintf("zones[%d]", i),
			})
		}
	}

	for i, l := range s.FirstRow {
		if !names[l.From] || !names[l.To] {
			r.AddError(validation.Result{
				Level:   validation.LevelGeometry,
				Message: fmt.Sprintf("first-row link %s -> %s refers to a missing well", l.From, l.To),
				Path:    fmt.Sprintf("first_row[%d]", i),
			})
		}
	}
	return r
}

func (b Bounds) contains(c [2]float64) bool {
	const eps = 1e-6
	return c[0] >= b.Min[0]-eps && c[0] <= b.Max[0]+eps && c[1] >= b.Min[1]-eps && c[1] <= b.Max[1]+eps
}
