package network

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Vladislav-Dmitriev/well-net/pkg/coverage"
	"github.com/Vladislav-Dmitriev/well-net/pkg/geo"
	"github.com/Vladislav-Dmitriev/well-net/pkg/project"
	"github.com/Vladislav-Dmitriev/well-net/pkg/pvt"
	"github.com/Vladislav-Dmitriev/well-net/pkg/radius"
	"github.com/Vladislav-Dmitriev/well-net/pkg/setcover"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// Input is everything one triple needs. Wells are the wells of the
// contour working the horizon; Radius is their mean-radius estimate.
type Input struct {
	Wells      []well.Well
	Radius     radius.Result
	Parameters project.Parameters
	PVT        pvt.Provider
	Logger     *zap.Logger
}

type pick struct {
	well   well.Well
	forced bool
	covers []string
	zone   coverage.Zone
	year   int
}

type passResult struct {
	picks      []pick
	notCovered []string
}

// DesignTriple selects the monitoring wells of one triple.
func DesignTriple(ctx context.Context, key Key, in Input) (*TripleResult, error) {
	start := time.Now()
	log := in.Logger
	if log == nil {
		log = zap.NewNop()
	}
	p := in.Parameters
	if err := p.CoverageOptions().Validate(); err != nil {
		return nil, err
	}

	r := in.Radius.MeanRadius
	res := &TripleResult{
		Key:        key,
		MeanRadius: r,
		ZoneRadius: r * key.Coefficient,
		FellBack:   in.Radius.FellBack,
		FirstRow:   firstRows(in),
		Anomalies:  in.Radius.Anomalies,
	}

	producers := producerPool(in.Wells, p.LimitProducersByMeanRate)
	if len(producers) == 0 {
		// Nothing to cover: an empty network, not a failure.
		res.Selected = []Selected{}
		res.NotCovered = []string{}
		fillStats(&res.Stats, in.Wells, producers, res.Selected)
		res.Duration = time.Since(start)
		return res, nil
	}

	primary, err := runPasses(ctx, log, in.Wells, producers, r, key.Coefficient, p)
	if err != nil {
		return nil, err
	}
	picks := primary.picks
	res.NotCovered = primary.notCovered

	if p.SeparationByYears > 0 && p.LimitRadiusCoef > 0 && key.Coefficient > p.LimitRadiusCoef {
		blind, err := blindZone(primary.picks, producers, r, p.LimitRadiusCoef, p.CoverageOptions())
		if err != nil {
			return nil, err
		}
		res.BlindZone = blind
		if len(blind) > 0 {
			log.Debug("blind-zone producers", zap.Strings("wells", blind))
			extra, err := runPasses(ctx, log, in.Wells, subset(producers, blind), r, p.LimitRadiusCoef, p)
			if err != nil {
				return nil, err
			}
			assignYears(extra.picks, p.SeparationByYears)
			picks = append(picks, extra.picks...)
		}
	}

	res.Selected, res.Stats, err = annotate(picks, key, in)
	if err != nil {
		return nil, err
	}
	fillStats(&res.Stats, in.Wells, producers, res.Selected)
	res.Stats.AreaCoverage = areaCoverage(in.Wells, picks, r, p.AreaCellSize)
	res.Duration = time.Since(start)
	return res, nil
}

// producerPool returns the producers entering the coverage problem.
func producerPool(wells []well.Well, limitByMeanRate bool) []well.Well {
	producers := well.ByRole(wells, well.Producer)
	if !limitByMeanRate {
		return producers
	}
	mean := well.MeanNonZeroOilRate(wells)
	var out []well.Well
	for _, w := range producers {
		if w.OilRate <= mean {
			out = append(out, w)
		}
	}
	return out
}

// runPasses resolves producers role by role in precedence order. Each pass
// only sees the producers the earlier passes left uncovered.
func runPasses(ctx context.Context, log *zap.Logger, wells, producers []well.Well, r, coeff float64, p project.Parameters) (passResult, error) {
	opts := p.CoverageOptions()
	remaining := producers
	var out passResult

	for _, role := range p.Precedence {
		if err := ctx.Err(); err != nil {
			return passResult{}, err
		}
		if len(remaining) == 0 {
			break
		}

		var (
			zones []coverage.Zone
			rel   *coverage.Relation
			sel   setcover.Selection
			err   error
		)
		switch role {
		case well.Observation, well.Injector:
			candidates := well.ByRole(wells, role)
			if len(candidates) == 0 {
				continue
			}
			if zones, err = coverage.NewZones(candidates, r, coeff); err != nil {
				return passResult{}, err
			}
			if rel, err = coverage.Build(zones, remaining, opts); err != nil {
				return passResult{}, err
			}
			sel = setcover.Reduce(rel)
		case well.Producer:
			if zones, err = coverage.NewZones(remaining, r, coeff); err != nil {
				return passResult{}, err
			}
			if rel, err = coverage.BuildMutual(zones, remaining, opts); err != nil {
				return passResult{}, err
			}
			sel = setcover.ReduceRanked(rel, rankByRate(remaining), p.Exclusions)
		default:
			return passResult{}, validation.NewConfigurationError("precedence", int(role), "unknown role")
		}

		byName := make(map[string]coverage.Zone, len(zones))
		for _, z := range zones {
			byName[z.Well.Name] = z
		}
		forced := make(map[string]bool, len(sel.Required))
		for _, n := range sel.Required {
			forced[n] = true
		}
		for _, name := range sel.All() {
			z := byName[name]
			out.picks = append(out.picks, pick{well: z.Well, forced: forced[name], covers: rel.Covers[name], zone: z})
		}
		remaining = subset(remaining, sel.Uncovered)

		log.Debug("precedence pass",
			zap.Stringer("role", role),
			zap.Int("candidates", len(rel.Candidates)),
			zap.Int("selected", len(sel.All())),
			zap.Int("remaining", len(remaining)))
	}
	out.notCovered = well.Names(remaining)
	if out.notCovered == nil {
		out.notCovered = []string{}
	}
	return out, nil
}

// blindZone returns the producers the selected zones cover at the design
// radius but no longer cover at the limit radius.
func blindZone(picks []pick, producers []well.Well, r, limit float64, opts coverage.Options) ([]string, error) {
	seen := map[string]bool{}
	for _, pk := range picks {
		for _, n := range pk.covers {
			seen[n] = true
		}
	}
	var observed []well.Well
	for _, w := range producers {
		if seen[w.Name] {
			observed = append(observed, w)
		}
	}
	if len(observed) == 0 {
		return nil, nil
	}

	zones := make([]coverage.Zone, 0, len(picks))
	for _, pk := range picks {
		z, err := coverage.NewZone(pk.well, r, limit)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	rel, err := coverage.Build(zones, observed, opts)
	if err != nil {
		return nil, err
	}
	var blind []string
	for _, w := range observed {
		if rel.Cardinality(w.Name) == 0 {
			blind = append(blind, w.Name)
		}
	}
	sort.Strings(blind)
	return blind, nil
}

// assignYears tags blind-zone picks with a survey year. With two years the
// picks are ordered by distance from the first one and alternate.
func assignYears(picks []pick, separation int) {
	if len(picks) == 0 {
		return
	}
	if separation != 2 {
		for i := range picks {
			picks[i].year = 1
		}
		return
	}
	origin := picks[0].well
	order := make([]int, len(picks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		da, db := origin.DistanceTo(picks[order[a]].well), origin.DistanceTo(picks[order[b]].well)
		if da != db {
			return da < db
		}
		return picks[order[a]].well.Name < picks[order[b]].well.Name
	})
	for rank, i := range order {
		picks[i].year = 1 + rank%2
	}
}

// rankByRate orders producers by ascending oil rate, then name.
func rankByRate(wells []well.Well) []string {
	sorted := append([]well.Well(nil), wells...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].OilRate != sorted[j].OilRate {
			return sorted[i].OilRate < sorted[j].OilRate
		}
		return sorted[i].Name < sorted[j].Name
	})
	out := make([]string, len(sorted))
	for i, w := range sorted {
		out[i] = w.Name
	}
	return out
}

func subset(wells []well.Well, names []string) []well.Well {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	var out []well.Well
	for _, w := range wells {
		if keep[w.Name] {
			out = append(out, w)
		}
	}
	return out
}

func firstRows(in Input) map[string][]string {
	out := map[string][]string{}
	for _, w := range well.ByRole(in.Wells, well.Injector) {
		fr := in.Radius.Wells[w.Name].FirstRow
		if fr == nil {
			fr = []string{}
		}
		out[w.Name] = fr
	}
	return out
}

// annotate attaches research time and production losses to each pick. A
// missing time coefficient leaves the time at zero and is counted.
func annotate(picks []pick, key Key, in Input) ([]Selected, Stats, error) {
	var st Stats
	out := make([]Selected, 0, len(picks))
	for _, pk := range picks {
		w := pk.well
		s := Selected{
			Name:        w.Name,
			Role:        w.Role,
			Kind:        w.Kind,
			Forced:      pk.forced,
			Covers:      pk.covers,
			MinDistance: in.Radius.MinDistance(w.Name) * key.Coefficient,
			SurveyYear:  pk.year,
		}
		if s.Covers == nil {
			s.Covers = []string{}
		}

		var (
			c   pvt.Coefficient
			err error = pvt.ErrNoCoefficient
		)
		if in.PVT != nil {
			c, err = in.PVT.Coefficient(w, key.Horizon)
		}
		switch {
		case err == nil:
			s.TimeCoefficient = c.Value
			s.CoefficientSource = c.Source
			if c.Source == pvt.SourceDefault {
				st.DefaultCoefficients++
			}
		case errors.Is(err, pvt.ErrNoCoefficient):
			st.MissingCoefficients++
		default:
			return nil, Stats{}, err
		}

		t := pvt.ResearchTime(s.TimeCoefficient, s.MinDistance)
		s.ResearchTime = t
		s.OilLoss = w.OilRate * t
		s.GasLoss = w.GasRate * t
		s.InjectionLoss = w.Injectivity * t
		out = append(out, s)
	}
	return out, st, nil
}

func fillStats(st *Stats, wells, producers []well.Well, selected []Selected) {
	st.Producers = len(producers)
	st.Injectors = len(well.ByRole(wells, well.Injector))
	st.Observation = len(well.ByRole(wells, well.Observation))

	byRole := map[well.Role]map[string]bool{}
	for _, s := range selected {
		if byRole[s.Role] == nil {
			byRole[s.Role] = map[string]bool{}
		}
		byRole[s.Role][s.Name] = true
	}
	share := func(role well.Role, total int) float64 {
		if total == 0 {
			return 0
		}
		return float64(len(byRole[role])) / float64(total)
	}
	st.ProducerShare = share(well.Producer, st.Producers)
	st.InjectorShare = share(well.Injector, st.Injectors)
	st.ObservationShare = share(well.Observation, st.Observation)
}

// areaCoverage is the sampled area of the selected zones, clipped to the
// hull of all wells grown by the mean radius, over the hull area.
func areaCoverage(wells []well.Well, picks []pick, meanRadius, cell float64) float64 {
	pts := make([]geo.Point2D, 0, 2*len(wells))
	for _, w := range wells {
		pts = append(pts, w.Head, w.Toe)
	}
	hull := geo.BufferedHull(pts, meanRadius)
	total := hull.Area()
	if total <= 0 {
		return 0
	}
	clipped := make([]geo.Polygon, 0, len(picks))
	for _, pk := range picks {
		clipped = append(clipped, geo.ClipToConvex(pk.zone.Polygon, hull))
	}
	return geo.SampledUnionArea(clipped, cell) / total
}
