package scene2d

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Vladislav-Dmitriev/well-net/pkg/geo"
	"github.com/Vladislav-Dmitriev/well-net/pkg/network"
	"github.com/Vladislav-Dmitriev/well-net/pkg/project"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

func testProject() *project.Project {
	params := project.DefaultParameters()
	params.LimitRadiusCoef = 0.5
	return &project.Project{
		Name:       "test",
		Parameters: params,
		Wells: []well.Well{
			{Name: "O1", Role: well.Observation, Kind: well.Vertical, Head: geo.Pt(0, 0), Toe: geo.Pt(0, 0), Horizons: []string{"AB1"}},
			{Name: "I1", Role: well.Injector, Kind: well.Vertical, Head: geo.Pt(400, 0), Toe: geo.Pt(400, 0), Horizons: []string{"AB1"}},
			{Name: "P1", Role: well.Producer, Kind: well.Vertical, Head: geo.Pt(200, 0), Toe: geo.Pt(200, 0), Horizons: []string{"AB1"}},
			{Name: "P2", Role: well.Producer, Kind: well.Horizontal, Head: geo.Pt(0, 300), Toe: geo.Pt(200, 300), Horizons: []string{"AB1"}},
			{Name: "P9", Role: well.Producer, Kind: well.Vertical, Head: geo.Pt(0, 0), Toe: geo.Pt(0, 0), Horizons: []string{"AB2"}},
		},
	}
}

func testTriple() *network.TripleResult {
	return &network.TripleResult{
		Key:        network.Key{Contour: project.DefaultContour, Horizon: "AB1", Coefficient: 1},
		MeanRadius: 250,
		ZoneRadius: 250,
		Selected: []network.Selected{
			{Name: "O1", Role: well.Observation, Kind: well.Vertical, Forced: true, Covers: []string{"P1"}},
			{Name: "P2", Role: well.Producer, Kind: well.Horizontal, Covers: []string{"P2"}, SurveyYear: 1},
		},
		NotCovered: []string{},
		FirstRow:   map[string][]string{"I1": {"P1"}},
		Stats:      network.Stats{AreaCoverage: 0.4},
	}
}

func TestAssemble2D(t *testing.T) {
	s, err := Assemble2D(testProject(), testTriple())
	if err != nil {
		t.Fatalf("Assemble2D failed: %v", err)
	}

	if s.Metadata.Triple != "field/AB1/1" {
		t.Errorf("triple = %q, want field/AB1/1", s.Metadata.Triple)
	}
	if s.Metadata.WellCount != 4 {
		t.Errorf("well count = %d, want 4 (P9 works AB2)", s.Metadata.WellCount)
	}
	if s.Metadata.Selected != 2 {
		t.Errorf("selected = %d, want 2", s.Metadata.Selected)
	}
	if s.Contour != nil {
		t.Errorf("implicit contour should have no outline, got %v", s.Contour)
	}

	byName := map[string]Well2D{}
	for _, w := range s.Wells {
		byName[w.Name] = w
	}
	if !byName["O1"].Selected || !byName["O1"].Forced {
		t.Errorf("O1 = %+v, want selected and forced", byName["O1"])
	}
	if byName["P1"].Selected {
		t.Error("P1 should not be selected")
	}
	if byName["P2"].SurveyYear != 1 || byName["P2"].Toe != [2]float64{200, 300} {
		t.Errorf("P2 = %+v", byName["P2"])
	}

	if len(s.Zones) != 2 {
		t.Fatalf("zones = %d, want 2", len(s.Zones))
	}
	if len(s.FirstRow) != 1 || s.FirstRow[0].From != "I1" || s.FirstRow[0].End != [2]float64{200, 0} {
		t.Errorf("first row = %+v", s.FirstRow)
	}
}

func TestAssemble2DZoneRadii(t *testing.T) {
	s, err := Assemble2D(testProject(), testTriple())
	if err != nil {
		t.Fatalf("Assemble2D failed: %v", err)
	}
	// O1 is drawn at the full radius around the origin, P2's survey-year
	// zone at half of it.
	maxAbs := func(coords [][2]float64, axis int) float64 {
		m := 0.0
		for _, c := range coords {
			if v := c[axis]; v > m {
				m = v
			} else if -v > m {
				m = -v
			}
		}
		return m
	}
	if got := maxAbs(s.Zones[0].Polygon, 0); got < 249 || got > 251 {
		t.Errorf("O1 zone extent = %v, want ~250", got)
	}
	if got := maxAbs(s.Zones[1].Polygon, 1); got < 424 || got > 426 {
		t.Errorf("P2 zone north extent = %v, want ~425 (300 + 125)", got)
	}

	if s.Bounds.Min[0] > -249 || s.Bounds.Max[1] < 424 {
		t.Errorf("bounds = %+v do not enclose the zones", s.Bounds)
	}
}

func TestAssemble2DUnknownContour(t *testing.T) {
	tr := testTriple()
	tr.Key.Contour = "nowhere"
	if _, err := Assemble2D(testProject(), tr); err == nil {
		t.Error("expected error for unknown contour")
	}
}

func TestAssemble2DSelectedWellMissing(t *testing.T) {
	tr := testTriple()
	tr.Selected = append(tr.Selected, network.Selected{Name: "P9", Role: well.Producer})
	if _, err := Assemble2D(testProject(), tr); err == nil {
		t.Error("expected error for a selected well on another horizon")
	}
}

func TestRenderSVG(t *testing.T) {
	s, err := Assemble2D(testProject(), testTriple())
	if err != nil {
		t.Fatalf("Assemble2D failed: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderSVG(&buf, s); err != nil {
		t.Fatalf("RenderSVG failed: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<svg ") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("output is not a standalone svg document")
	}
	for _, want := range []string{`id="zones"`, `id="first-row"`, `>O1</text>`, `>P2</text>`, `stroke="#d50000"`} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %s", want)
		}
	}
	if n := strings.Count(out, "<circle"); n != 4 {
		t.Errorf("circles = %d, want 4", n)
	}
}

func TestAssembleDemoField(t *testing.T) {
	p, r, err := project.LoadAndBuild("../../examples/demo-field")
	if err != nil || p == nil {
		t.Fatalf("LoadAndBuild failed: %v %+v", err, r)
	}
	res, _ := network.Design(context.Background(), p, network.Options{Workers: 1})
	for _, k := range res.Keys() {
		s, err := Assemble2D(p, res.Triples[k])
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if len(s.Contour) != 4 {
			t.Errorf("%s: contour vertices = %d, want 4", k, len(s.Contour))
		}
		if _, err := json.Marshal(s); err != nil {
			t.Errorf("%s: marshal: %v", k, err)
		}
	}
}

func TestValidateAssembledScene(t *testing.T) {
	s, err := Assemble2D(testProject(), testTriple())
	if err != nil {
		t.Fatalf("Assemble2D failed: %v", err)
	}
	if r := Validate(s); !r.Valid {
		t.Errorf("assembled scene invalid: %+v", r.Errors)
	}
}

func TestValidateCatchesBrokenScene(t *testing.T) {
	s := &Scene2D{
		Wells: []Well2D{
			{Name: "A", Head: [2]float64{0, 0}, Toe: [2]float64{0, 0}},
			{Name: "A", Head: [2]float64{50, 50}, Toe: [2]float64{50, 50}},
		},
		Zones:    []Zone2D{{Well: "B", Polygon: [][2]float64{{0, 0}, {1, 0}, {0, 1}}}},
		FirstRow: []Link2D{{From: "A", To: "C"}},
		Bounds:   Bounds{Max: [2]float64{10, 10}},
	}
	r := Validate(s)
	if r.Valid {
		t.Fatal("expected invalid report")
	}
	// duplicate A, A outside bounds, zone of B, link to C
	if len(r.Errors) != 4 {
		t.Errorf("errors = %d, want 4: %+v", len(r.Errors), r.Errors)
	}
	if Validate(nil).Valid {
		t.Error("nil scene should be invalid")
	}
}
