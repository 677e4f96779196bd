package firstrow

import (
	"sort"

	"github.com/Vladislav-Dmitriev/well-net/pkg/geo"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// PointResult is the first row seen from one reference point.
type PointResult struct {
	Point   geo.Point2D `json:"point"`
	Wells   []string    `json:"wells"`
	Sectors []Sector    `json:"sectors"`
}

// Result is the first row of one reference well: the union over its
// reference points.
type Result struct {
	Well      string        `json:"well"`
	Wells     []string      `json:"wells"`
	Points    []PointResult `json:"points"`
	Anomalies []Anomaly     `json:"anomalies,omitempty"`
}

// Detect finds the first row of ref among neighbours. The caller limits
// neighbours to the search distance; ref itself is ignored if present.
func Detect(ref well.Well, neighbours []well.Well, a Angles) (Result, error) {
	if err := a.Validate(); err != nil {
		return Result{}, err
	}
	others := make([]well.Well, 0, len(neighbours))
	for _, w := range neighbours {
		if w.Name != ref.Name {
			others = append(others, w)
		}
	}

	res := Result{Well: ref.Name, Wells: []string{}}
	seen := make(map[string]bool)
	for _, pt := range ref.ReferencePoints() {
		sectors, err := Sectors(pt, others, a)
		if err != nil {
			return Result{}, err
		}
		resolved, anomalies := ResolveWraparound(sectors)
		for _, an := range anomalies {
			an.Reference = ref.Name
			an.Point = pt
			res.Anomalies = append(res.Anomalies, an)
		}
		survivors := removeOccluded(resolved, a.MaxOverlapPercent)
		res.Points = append(res.Points, PointResult{Point: pt, Wells: survivors, Sectors: resolved})
		for _, name := range survivors {
			if !seen[name] {
				seen[name] = true
				res.Wells = append(res.Wells, name)
			}
		}
	}
	sort.Strings(res.Wells)
	return res, nil
}

// Within returns the wells whose trace lies within maxDistance of ref's
// trace, excluding ref.
func Within(ref well.Well, wells []well.Well, maxDistance float64) []well.Well {
	var out []well.Well
	for _, w := range wells {
		if w.Name == ref.Name {
			continue
		}
		if ref.DistanceTo(w) <= maxDistance {
			out = append(out, w)
		}
	}
	return out
}
