package network

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Vladislav-Dmitriev/well-net/pkg/geo"
	"github.com/Vladislav-Dmitriev/well-net/pkg/project"
	"github.com/Vladislav-Dmitriev/well-net/pkg/pvt"
	"github.com/Vladislav-Dmitriev/well-net/pkg/radius"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func vertical(name string, role well.Role, x, y, oil float64) well.Well {
	p := geo.Pt(x, y)
	return well.Well{Name: name, Kind: well.Vertical, Role: role, Head: p, Toe: p, OilRate: oil, Horizons: []string{"AB1"}}
}

func horizontal(name string, role well.Role, x1, y1, x3, y3 float64) well.Well {
	return well.Well{Name: name, Kind: well.Horizontal, Role: role, Head: geo.Pt(x1, y1), Toe: geo.Pt(x3, y3), Horizons: []string{"AB1"}}
}

func input(r float64, wells ...well.Well) Input {
	return Input{
		Wells:      wells,
		Radius:     radius.Result{MeanRadius: r, Wells: map[string]radius.WellStats{}},
		Parameters: project.DefaultParameters(),
	}
}

func key(coef float64) Key {
	return Key{Contour: project.DefaultContour, Horizon: "AB1", Coefficient: coef}
}

func selectedNames(tr *TripleResult) []string {
	return tr.Names()
}

func find(t *testing.T, tr *TripleResult, name string) Selected {
	t.Helper()
	for _, s := range tr.Selected {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("%s not selected; got %v", name, selectedNames(tr))
	return Selected{}
}

// --- precedence passes ---

func TestObservationPassResolvesBeforeInjectors(t *testing.T) {
	in := input(200,
		vertical("O", well.Observation, 1000, 1000, 0),
		vertical("I", well.Injector, 1100, 1000, 0),
		vertical("P", well.Producer, 1050, 1000, 10),
	)
	tr, err := DesignTriple(context.Background(), key(1), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"O"}, selectedNames(tr))
	assert.Empty(t, tr.NotCovered)
	assert.Equal(t, well.Observation, tr.Selected[0].Role)
}

func TestForcedInclusion(t *testing.T) {
	in := input(300,
		vertical("O1", well.Observation, 1000, 1000, 0),
		vertical("O2", well.Observation, 1400, 1000, 0),
		vertical("O3", well.Observation, 1200, 1100, 0),
		vertical("P1", well.Producer, 900, 1000, 10),
		vertical("P2", well.Producer, 1200, 1000, 10),
		vertical("P3", well.Producer, 1600, 1000, 10),
	)
	tr, err := DesignTriple(context.Background(), key(1), in)
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"O1", "O2"}, selectedNames(tr)); diff != "" {
		t.Errorf("selected mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, find(t, tr, "O1").Forced)
	assert.True(t, find(t, tr, "O2").Forced)
}

func TestCoverageThresholdAcrossPasses(t *testing.T) {
	in := input(100,
		vertical("O", well.Observation, 1000, 1000, 0),
		horizontal("H40", well.Producer, 1060, 1000, 1160, 1000),
		horizontal("H20", well.Producer, 1080, 1000, 1180, 1000),
	)
	tr, err := DesignTriple(context.Background(), key(1), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"H40"}, find(t, tr, "O").Covers)
	h20 := find(t, tr, "H20")
	assert.Equal(t, well.Producer, h20.Role)
	assert.Empty(t, tr.NotCovered)
}

func TestUncoverableProducerReported(t *testing.T) {
	in := input(200,
		vertical("O", well.Observation, 1000, 1000, 0),
		vertical("near", well.Producer, 1100, 1000, 10),
		vertical("far", well.Producer, 9000, 9000, 10),
	)
	in.Parameters.Precedence = []well.Role{well.Observation, well.Injector}

	tr, err := DesignTriple(context.Background(), key(1), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"far"}, tr.NotCovered)
	assert.Equal(t, []string{"O"}, selectedNames(tr))
}

func TestExcludedProducerNeverPromoted(t *testing.T) {
	in := input(200,
		vertical("O", well.Observation, 1000, 1000, 0),
		vertical("near", well.Producer, 1100, 1000, 10),
		vertical("X", well.Producer, 5000, 5000, 1),
	)
	in.Parameters.Exclusions = []string{"X"}

	tr, err := DesignTriple(context.Background(), key(1), in)
	require.NoError(t, err)
	assert.NotContains(t, selectedNames(tr), "X")
	assert.Equal(t, []string{"X"}, tr.NotCovered)
}

func TestIsolatedProducersRankedByRate(t *testing.T) {
	in := input(300,
		vertical("A", well.Producer, 1000, 1000, 30),
		vertical("B", well.Producer, 1200, 1000, 5),
		vertical("C", well.Producer, 1400, 1000, 20),
	)
	tr, err := DesignTriple(context.Background(), key(1), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"B"}, selectedNames(tr))
	assert.Equal(t, []string{"A", "C"}, find(t, tr, "B").Covers)
}

func TestProducerPoolLimitedByMeanRate(t *testing.T) {
	in := input(200,
		vertical("low", well.Producer, 1000, 1000, 10),
		vertical("high", well.Producer, 5000, 1000, 30),
	)
	in.Parameters.LimitProducersByMeanRate = true

	tr, err := DesignTriple(context.Background(), key(1), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"low"}, selectedNames(tr))
	assert.Equal(t, 1, tr.Stats.Producers)
}

func TestNoProducers(t *testing.T) {
	in := input(200,
		vertical("O", well.Observation, 1000, 1000, 0),
		vertical("I", well.Injector, 1100, 1000, 0),
	)
	in.Radius.Wells["I"] = radius.WellStats{FirstRow: []string{"O"}, MinDistance: 100}

	tr, err := DesignTriple(context.Background(), key(1.5), in)
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Empty(t, tr.Selected)
	assert.NotNil(t, tr.Selected)
	assert.Empty(t, tr.NotCovered)
	assert.NotNil(t, tr.NotCovered)
	assert.InDelta(t, 200, tr.MeanRadius, 1e-9)
	assert.InDelta(t, 300, tr.ZoneRadius, 1e-9)
	assert.Equal(t, map[string][]string{"I": {"O"}}, tr.FirstRow)
	assert.Zero(t, tr.Stats.Producers)
	assert.Equal(t, 1, tr.Stats.Injectors)
}

func TestDesignKeepsEmptyTriples(t *testing.T) {
	p := &project.Project{
		Name:       "empty",
		Parameters: project.DefaultParameters(),
		Wells: []well.Well{
			vertical("O", well.Observation, 1000, 1000, 0),
			vertical("I", well.Injector, 1300, 1000, 0),
		},
	}
	res, report := Design(context.Background(), p, Options{Workers: 2})

	k := key(1)
	require.Contains(t, res.Triples, k)
	assert.Empty(t, res.Failures)
	assert.Equal(t, []Key{k}, res.Skipped)
	assert.True(t, report.Valid)
	assert.Contains(t, res.Triples[k].FirstRow, "I")
	assert.Positive(t, res.Triples[k].MeanRadius)
}

// --- research time and losses ---

func TestResearchTimeAndLosses(t *testing.T) {
	p := vertical("P", well.Producer, 1000, 1000, 10)
	p.GasRate = 100
	in := input(300, p)
	in.Radius.Wells["P"] = radius.WellStats{FirstRow: []string{"Q"}, MinDistance: 250}
	in.PVT = &pvt.Table{Default: 0.001}

	tr, err := DesignTriple(context.Background(), key(2), in)
	require.NoError(t, err)

	s := find(t, tr, "P")
	assert.InDelta(t, 500, s.MinDistance, 1e-9)
	assert.InDelta(t, 250, s.ResearchTime, 1e-9)
	assert.InDelta(t, 2500, s.OilLoss, 1e-9)
	assert.InDelta(t, 25000, s.GasLoss, 1e-9)
	assert.Zero(t, s.InjectionLoss)
	assert.Equal(t, pvt.SourceDefault, s.CoefficientSource)
	assert.Equal(t, 1, tr.Stats.DefaultCoefficients)
	assert.InDelta(t, 600, tr.ZoneRadius, 1e-9)
}

func TestMissingCoefficientIsCounted(t *testing.T) {
	in := input(300, vertical("P", well.Producer, 1000, 1000, 10))
	tr, err := DesignTriple(context.Background(), key(1), in)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Stats.MissingCoefficients)
	assert.Zero(t, find(t, tr, "P").ResearchTime)
}

// --- blind zones ---

func blindInput(separation int, producers ...well.Well) Input {
	wells := append([]well.Well{vertical("O", well.Observation, 1000, 1000, 0)}, producers...)
	in := input(300, wells...)
	in.Parameters.LimitRadiusCoef = 1
	in.Parameters.SeparationByYears = separation
	return in
}

func TestBlindZoneRerun(t *testing.T) {
	in := blindInput(1,
		vertical("Pn", well.Producer, 1100, 1000, 10),
		vertical("Pf", well.Producer, 1550, 1000, 10),
	)
	tr, err := DesignTriple(context.Background(), key(2), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"Pf"}, tr.BlindZone)
	assert.Equal(t, 0, find(t, tr, "O").SurveyYear)
	assert.Equal(t, 1, find(t, tr, "Pf").SurveyYear)
	assert.Empty(t, tr.NotCovered)
}

func TestBlindZoneSplitIntoTwoYears(t *testing.T) {
	in := blindInput(2,
		vertical("Pa", well.Producer, 1500, 1000, 5),
		vertical("Pb", well.Producer, 1000, 1500, 10),
	)
	tr, err := DesignTriple(context.Background(), key(2), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"Pa", "Pb"}, tr.BlindZone)
	assert.Equal(t, 1, find(t, tr, "Pa").SurveyYear)
	assert.Equal(t, 2, find(t, tr, "Pb").SurveyYear)
}

func TestBlindZoneOnlyAboveLimit(t *testing.T) {
	in := blindInput(1,
		vertical("Pn", well.Producer, 1100, 1000, 10),
		vertical("Pf", well.Producer, 1550, 1000, 10),
	)
	in.Parameters.LimitRadiusCoef = 2

	tr, err := DesignTriple(context.Background(), key(2), in)
	require.NoError(t, err)
	assert.Nil(t, tr.BlindZone)
	assert.Equal(t, []string{"O"}, selectedNames(tr))
}

// --- statistics ---

func TestStats(t *testing.T) {
	in := input(200,
		vertical("O", well.Observation, 1000, 1000, 0),
		vertical("I1", well.Injector, 3000, 3000, 0),
		vertical("I2", well.Injector, 5000, 5000, 0),
		vertical("P1", well.Producer, 1100, 1000, 10),
		vertical("P2", well.Producer, 3100, 3000, 10),
	)
	in.Radius.Wells["I1"] = radius.WellStats{FirstRow: []string{"P2"}}

	tr, err := DesignTriple(context.Background(), key(1), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"I1", "O"}, selectedNames(tr))
	assert.InDelta(t, 1.0, tr.Stats.ObservationShare, 1e-9)
	assert.InDelta(t, 0.5, tr.Stats.InjectorShare, 1e-9)
	assert.Zero(t, tr.Stats.ProducerShare)
	assert.Greater(t, tr.Stats.AreaCoverage, 0.0)
	assert.LessOrEqual(t, tr.Stats.AreaCoverage, 1.0)
	assert.Equal(t, map[string][]string{"I1": {"P2"}, "I2": {}}, tr.FirstRow)
}

// --- keys ---

func TestKeyText(t *testing.T) {
	k := Key{Contour: "north/east", Horizon: "AB1", Coefficient: 1.5}
	assert.Equal(t, "north/east/AB1/1.5", k.String())

	var got Key
	require.NoError(t, got.UnmarshalText([]byte(k.String())))
	assert.Equal(t, k, got)

	assert.Error(t, got.UnmarshalText([]byte("nokey")))
	assert.Error(t, got.UnmarshalText([]byte("a/b/x")))
}

func TestResultJSONKeys(t *testing.T) {
	res := &Result{Triples: map[Key]*TripleResult{key(1): {Key: key(1)}}}
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"field/AB1/1"`)

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Key{key(1)}, back.Keys())
}

// --- Design ---

type recorder struct {
	mu       sync.Mutex
	ok, fail int
}

func (r *recorder) ObserveTriple(_ Key, _ time.Duration, _ int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.fail++
		return
	}
	r.ok++
}

func isolationProject() *project.Project {
	params := project.DefaultParameters()
	params.MultCoef = []float64{1, 2}

	bad := vertical("B", well.Observation, 1050, 2000, 0)
	bad.Kind = 0
	bad.Horizons = []string{"AB2"}
	q := vertical("Q", well.Producer, 1000, 2000, 10)
	q.Horizons = []string{"AB2"}

	return &project.Project{
		Name:       "isolation",
		Parameters: params,
		Wells: []well.Well{
			vertical("O", well.Observation, 1000, 1000, 0),
			vertical("P", well.Producer, 1100, 1000, 10),
			q, bad,
		},
	}
}

func TestDesignIsolatesFailures(t *testing.T) {
	rec := &recorder{}
	res, report := Design(context.Background(), isolationProject(), Options{Workers: 2, Recorder: rec})

	assert.Equal(t, []Key{
		{Contour: "field", Horizon: "AB1", Coefficient: 1},
		{Contour: "field", Horizon: "AB1", Coefficient: 2},
	}, res.Keys())
	assert.Equal(t, []Key{
		{Contour: "field", Horizon: "AB2", Coefficient: 1},
		{Contour: "field", Horizon: "AB2", Coefficient: 2},
	}, res.FailedKeys())

	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, validation.LevelSchema, report.Errors[0].Level)
	assert.Equal(t, "field/AB2/1", report.Errors[0].Scope)

	assert.Equal(t, 2, rec.ok)
	assert.Equal(t, 2, rec.fail)
}

func TestDesignCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, report := Design(ctx, isolationProject(), Options{Workers: 1})
	assert.Empty(t, res.Triples)
	assert.Len(t, res.Failures, 4)
	assert.False(t, report.Valid)
}

func TestDesignDemoField(t *testing.T) {
	p, r, err := project.LoadAndBuild("../../examples/demo-field")
	require.NoError(t, err)
	require.True(t, r.Valid, "%+v", r.Errors)

	res, report := Design(context.Background(), p, Options{Workers: 4, TripleTimeout: time.Minute})
	require.True(t, report.Valid, "%+v", report.Errors)
	assert.Len(t, res.Triples, 4)
	assert.Empty(t, res.Skipped)

	for _, k := range res.Keys() {
		tr := res.Triples[k]
		assert.False(t, math.IsNaN(tr.MeanRadius), k.String())
		assert.Greater(t, tr.MeanRadius, 0.0, k.String())

		// every producer is selected, covered by a selected well or reported
		accounted := map[string]bool{}
		for _, s := range tr.Selected {
			accounted[s.Name] = true
			for _, c := range s.Covers {
				accounted[c] = true
			}
		}
		for _, n := range tr.NotCovered {
			accounted[n] = true
		}
		wells := project.HorizonWells(p.ContourWells(p.Contours[0]), k.Horizon)
		for _, w := range well.ByRole(wells, well.Producer) {
			assert.True(t, accounted[w.Name], "%s: producer %s unaccounted", k, w.Name)
		}
	}
}
