// Package radius derives the characteristic monitoring radius of a horizon
// from the first-row relationships between its wells.
package radius

import (
	"context"
	"math"
	"sort"

	"github.com/Vladislav-Dmitriev/well-net/pkg/firstrow"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// Params configures the estimator.
type Params struct {
	Angles firstrow.Angles
	// MaxDistance bounds the neighbourhood searched around each well and
	// is the fallback radius.
	MaxDistance float64
}

// WellStats are the first-row figures of one well.
type WellStats struct {
	FirstRow     []string `json:"first_row"`
	MeanDistance float64  `json:"mean_distance"`
	MinDistance  float64  `json:"min_distance"`
}

// Result is the estimate for one set of wells.
type Result struct {
	MeanRadius float64              `json:"mean_radius"`
	FellBack   bool                 `json:"fell_back"`
	Wells      map[string]WellStats `json:"wells"`
	Anomalies  []firstrow.Anomaly   `json:"anomalies,omitempty"`
}

// MinDistance returns the distance from name to its nearest first-row
// well, or the fallback radius when it has none.
func (r Result) MinDistance(name string) float64 {
	if s, ok := r.Wells[name]; ok && len(s.FirstRow) > 0 {
		return s.MinDistance
	}
	return r.MeanRadius
}

// Estimate runs first-row detection around every well and averages the
// per-well mean first-row distances. When no well has a first row the
// radius is exactly MaxDistance.
func Estimate(ctx context.Context, wells []well.Well, p Params) (Result, error) {
	if err := p.Angles.Validate(); err != nil {
		return Result{}, err
	}
	if p.MaxDistance <= 0 || math.IsNaN(p.MaxDistance) || math.IsInf(p.MaxDistance, 0) {
		return Result{}, validation.NewConfigurationError("max_distance", p.MaxDistance, "must be a positive length")
	}

	ordered := append([]well.Well(nil), wells...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })
	index := well.Index(ordered)

	res := Result{Wells: make(map[string]WellStats, len(ordered))}
	sum, n := 0.0, 0
	for _, w := range ordered {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		fr, err := firstrow.Detect(w, firstrow.Within(w, ordered, p.MaxDistance), p.Angles)
		if err != nil {
			return Result{}, err
		}
		res.Anomalies = append(res.Anomalies, fr.Anomalies...)

		stats := WellStats{FirstRow: fr.Wells}
		if len(fr.Wells) > 0 {
			total, minDist := 0.0, math.Inf(1)
			for _, name := range fr.Wells {
				d := w.DistanceTo(index[name])
				total += d
				minDist = math.Min(minDist, d)
			}
			stats.MeanDistance = total / float64(len(fr.Wells))
			stats.MinDistance = minDist
			sum += stats.MeanDistance
			n++
		}
		res.Wells[w.Name] = stats
	}

	if n == 0 {
		res.MeanRadius = p.MaxDistance
		res.FellBack = true
		return res, nil
	}
	res.MeanRadius = sum / float64(n)
	return res, nil
}
