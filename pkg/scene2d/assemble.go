package scene2d

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Vladislav-Dmitriev/well-net/pkg/coverage"
	"github.com/Vladislav-Dmitriev/well-net/pkg/geo"
	"github.com/Vladislav-Dmitriev/well-net/pkg/network"
	"github.com/Vladislav-Dmitriev/well-net/pkg/project"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// Assemble2D converts a designed triple into a 2D scene. Zones of the main
// network are drawn at the triple coefficient; survey-year zones at the
// limit coefficient they were selected with.
func Assemble2D(p *project.Project, tr *network.TripleResult) (*Scene2D, error) {
	var contour *project.Contour
	for _, c := range p.EffectiveContours() {
		if c.Name == tr.Key.Contour {
			contour = &c
			break
		}
	}
	if contour == nil {
		return nil, fmt.Errorf("contour %q not in project", tr.Key.Contour)
	}
	wells := project.HorizonWells(p.ContourWells(*contour), tr.Key.Horizon)
	index := well.Index(wells)

	zones, err := assembleZones(index, tr, p.Parameters.LimitRadiusCoef)
	if err != nil {
		return nil, err
	}
	s := &Scene2D{
		Metadata: assembleMetadata(p, tr, len(wells)),
		Wells:    assembleWells(wells, tr),
		Zones:    zones,
		FirstRow: assembleLinks(index, tr),
	}
	if len(contour.Vertices) > 0 {
		s.Contour = pointsToCoords(contour.Vertices)
	}
	s.Bounds = bounds(s)
	return s, nil
}

func assembleMetadata(p *project.Project, tr *network.TripleResult, n int) Metadata {
	notCovered := tr.NotCovered
	if notCovered == nil {
		notCovered = []string{}
	}
	return Metadata{
		Project:      p.Name,
		Triple:       tr.Key.String(),
		MeanRadiusM:  tr.MeanRadius,
		ZoneRadiusM:  tr.ZoneRadius,
		WellCount:    n,
		Selected:     len(tr.Names()),
		NotCovered:   notCovered,
		AreaCoverage: tr.Stats.AreaCoverage,
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
	}
}

func assembleWells(wells []well.Well, tr *network.TripleResult) []Well2D {
	picked := make(map[string]network.Selected, len(tr.Selected))
	for _, s := range tr.Selected {
		if _, ok := picked[s.Name]; !ok {
			picked[s.Name] = s
		}
	}

	result := make([]Well2D, 0, len(wells))
	for _, w := range wells {
		w2 := Well2D{
			Name: w.Name,
			Role: w.Role.String(),
			Kind: w.Kind.String(),
			Head: coord(w.Head),
			Toe:  coord(w.Toe),
		}
		if s, ok := picked[w.Name]; ok {
			w2.Selected = true
			w2.Forced = s.Forced
			w2.SurveyYear = s.SurveyYear
		}
		result = append(result, w2)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func assembleZones(index map[string]well.Well, tr *network.TripleResult, limit float64) ([]Zone2D, error) {
	result := make([]Zone2D, 0, len(tr.Selected))
	for _, s := range tr.Selected {
		w, ok := index[s.Name]
		if !ok {
			return nil, fmt.Errorf("selected well %s not on %s", s.Name, tr.Key)
		}
		coef := tr.Key.Coefficient
		if s.SurveyYear > 0 && limit > 0 {
			coef = limit
		}
		z, err := coverage.NewZone(w, tr.MeanRadius, coef)
		if err != nil {
			return nil, err
		}
		result = append(result, Zone2D{
			Well:       s.Name,
			SurveyYear: s.SurveyYear,
			Polygon:    pointsToCoords(z.Polygon.Vertices),
		})
	}
	return result, nil
}

func assembleLinks(index map[string]well.Well, tr *network.TripleResult) []Link2D {
	injectors := make([]string, 0, len(tr.FirstRow))
	for name := range tr.FirstRow {
		injectors = append(injectors, name)
	}
	sort.Strings(injectors)

	result := []Link2D{}
	for _, inj := range injectors {
		from, ok := index[inj]
		if !ok {
			continue
		}
		for _, name := range tr.FirstRow[inj] {
			to, ok := index[name]
			if !ok {
				continue
			}
			result = append(result, Link2D{
				From:  inj,
				To:    name,
				Start: coord(from.EntryPoint()),
				End:   coord(to.EntryPoint()),
			})
		}
	}
	return result
}

func bounds(s *Scene2D) Bounds {
	b := Bounds{
		Min: [2]float64{math.Inf(1), math.Inf(1)},
		Max: [2]float64{math.Inf(-1), math.Inf(-1)},
	}
	grow := func(c [2]float64) {
		b.Min[0], b.Min[1] = math.Min(b.Min[0], c[0]), math.Min(b.Min[1], c[1])
		b.Max[0], b.Max[1] = math.Max(b.Max[0], c[0]), math.Max(b.Max[1], c[1])
	}
	for _, w := range s.Wells {
		grow(w.Head)
		grow(w.Toe)
	}
	for _, z := range s.Zones {
		for _, c := range z.Polygon {
			grow(c)
		}
	}
	if math.IsInf(b.Min[0], 1) {
		return Bounds{}
	}
	return b
}

func coord(p geo.Point2D) [2]float64 {
	return [2]float64{p.X, p.Y}
}

// pointsToCoords converts a []geo.Point2D to a [][2]float64 coordinate list.
func pointsToCoords(pts []geo.Point2D) [][2]float64 {
	coords := make([][2]float64, len(pts))
	for i, pt := range pts {
		coords[i] = coord(pt)
	}
	return coords
}
