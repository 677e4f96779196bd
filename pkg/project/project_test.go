package project

import (
	"reflect"
	"testing"

	"github.com/Vladislav-Dmitriev/well-net/pkg/coverage"
	"github.com/Vladislav-Dmitriev/well-net/pkg/geo"
	"github.com/Vladislav-Dmitriev/well-net/pkg/pvt"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

const demoDir = "../../examples/demo-field"

func TestLoadProject(t *testing.T) {
	doc, err := LoadProject(demoDir)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}

	if doc.Name != "demo-field" {
		t.Errorf("name = %q, want %q", doc.Name, "demo-field")
	}
	p := doc.Parameters
	if p.MaxDistance != 1000 {
		t.Errorf("max_distance = %v, want 1000", p.MaxDistance)
	}
	if p.Mode != coverage.ModeLength {
		t.Errorf("mode = %v, want length", p.Mode)
	}
	if !reflect.DeepEqual(p.MultCoef, []float64{1, 1.5}) {
		t.Errorf("mult_coef = %v, want [1 1.5]", p.MultCoef)
	}
	wantPrecedence := []well.Role{well.Observation, well.Injector, well.Producer}
	if !reflect.DeepEqual(p.Precedence, wantPrecedence) {
		t.Errorf("precedence = %v, want %v", p.Precedence, wantPrecedence)
	}
	if p.SeparationByYears != 2 {
		t.Errorf("separation_by_years = %d, want 2", p.SeparationByYears)
	}

	if len(doc.Wells) != 11 {
		t.Errorf("wells = %d, want 11", len(doc.Wells))
	}
	if len(doc.Contours) != 1 || doc.Contours[0].Name != "main" {
		t.Errorf("contours = %+v, want one contour named main", doc.Contours)
	}
	if doc.PVT == nil {
		t.Fatal("pvt table not loaded")
	}
	if _, ok := doc.PVT.Oilfields["NORTH"]; !ok {
		t.Errorf("oilfield keys = %v, want upper-cased NORTH", doc.PVT.Oilfields)
	}
}

func TestLoadProjectMissing(t *testing.T) {
	_, err := LoadProject("/nonexistent/path")
	if err == nil {
		t.Error("expected error for missing project directory")
	}
}

func TestLoadAndBuild(t *testing.T) {
	p, r, err := LoadAndBuild(demoDir)
	if err != nil {
		t.Fatalf("LoadAndBuild failed: %v", err)
	}
	if !r.Valid {
		t.Fatalf("report invalid: %+v", r.Errors)
	}

	if got, want := p.Horizons(), []string{"AB1", "AB2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("horizons = %v, want %v", got, want)
	}

	idx := well.Index(p.Wells)
	if idx["INJ2"].Kind != well.Horizontal {
		t.Errorf("INJ2 kind = %v, want horizontal", idx["INJ2"].Kind)
	}
	if !idx["INJ2"].OnHorizon("AB2") {
		t.Error("INJ2 should work AB2")
	}
	if idx["OBS2"].Role != well.Observation {
		t.Errorf("OBS2 role = %v, want observation", idx["OBS2"].Role)
	}
	if idx["P1"].Kind != well.Vertical {
		t.Errorf("P1 kind = %v, want vertical", idx["P1"].Kind)
	}

	c, err := p.PVT.Coefficient(idx["P6"], "AB2")
	if err != nil {
		t.Fatalf("coefficient: %v", err)
	}
	if c.Value != 0.00015 || c.Source != pvt.SourceOilfield {
		t.Errorf("P6 coefficient = %+v, want 0.00015 from oilfield", c)
	}

	if len(r.Info) == 0 {
		t.Error("expected a summary info entry")
	}
}

func TestContourWells(t *testing.T) {
	p := &Project{Wells: []well.Well{
		{Name: "in", Head: geo.Pt(5, 5), Toe: geo.Pt(5, 5)},
		{Name: "out", Head: geo.Pt(50, 5), Toe: geo.Pt(50, 5)},
	}}
	square := Contour{Name: "sq", Vertices: []geo.Point2D{
		geo.Pt(0, 0), geo.Pt(0, 10), geo.Pt(10, 10), geo.Pt(10, 0),
	}}

	got := well.Names(p.ContourWells(square))
	if !reflect.DeepEqual(got, []string{"in"}) {
		t.Errorf("contour wells = %v, want [in]", got)
	}

	field := p.EffectiveContours()
	if len(field) != 1 || field[0].Name != DefaultContour {
		t.Fatalf("effective contours = %+v, want implicit field", field)
	}
	if n := len(p.ContourWells(field[0])); n != 2 {
		t.Errorf("implicit contour holds %d wells, want 2", n)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	doc, err := Parse([]byte("name: x\nparameters:\n  percent: 40\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Parameters.Percent != 40 {
		t.Errorf("percent = %v, want 40", doc.Parameters.Percent)
	}
	if doc.Parameters.VerticalWellAngle != 10 {
		t.Errorf("vertical_well_angle = %v, want default 10", doc.Parameters.VerticalWellAngle)
	}
	if len(doc.Parameters.Precedence) != 3 {
		t.Errorf("precedence = %v, want default of 3 roles", doc.Parameters.Precedence)
	}
}

func TestParseRejectsUnknownMode(t *testing.T) {
	if _, err := Parse([]byte("parameters:\n  mode: area\n")); err == nil {
		t.Error("expected error for unknown coverage mode")
	}
}

func validDocument() *Document {
	doc := NewDocument()
	doc.Wells = []well.Record{
		{Name: "1", Role: "producer", XT1: 100, YT1: 100, Horizon: "AB1"},
		{Name: "2", Role: "injector", XT1: 300, YT1: 100, Horizon: "AB1"},
	}
	return doc
}

func TestValidateSchemaValid(t *testing.T) {
	r := ValidateSchema(validDocument())
	if !r.Valid {
		t.Errorf("expected valid document, got %+v", r.Errors)
	}
}

func TestValidateSchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
		path   string
	}{
		{"vertical angle", func(d *Document) { d.Parameters.VerticalWellAngle = 90 }, "parameters.vertical_well_angle"},
		{"overlap", func(d *Document) { d.Parameters.MaxOverlapPercent = 101 }, "parameters.max_overlap_percent"},
		{"horizontal t1", func(d *Document) { d.Parameters.AngleHorizontalT1 = -1 }, "parameters.angle_horizontal_t1"},
		{"max distance", func(d *Document) { d.Parameters.MaxDistance = 0 }, "parameters.max_distance"},
		{"percent", func(d *Document) { d.Parameters.Percent = 150 }, "parameters.percent"},
		{"empty mult_coef", func(d *Document) { d.Parameters.MultCoef = nil }, "parameters.mult_coef"},
		{"negative mult_coef", func(d *Document) { d.Parameters.MultCoef = []float64{1, -2} }, "parameters.mult_coef[1]"},
		{"duplicate mult_coef", func(d *Document) { d.Parameters.MultCoef = []float64{1, 1} }, "parameters.mult_coef[1]"},
		{"empty precedence", func(d *Document) { d.Parameters.Precedence = nil }, "parameters.precedence"},
		{"producer not last", func(d *Document) {
			d.Parameters.Precedence = []well.Role{well.Producer, well.Observation}
		}, "parameters.precedence[0]"},
		{"duplicate role", func(d *Document) {
			d.Parameters.Precedence = []well.Role{well.Observation, well.Observation}
		}, "parameters.precedence[1]"},
		{"separation", func(d *Document) { d.Parameters.SeparationByYears = 3 }, "parameters.separation_by_years"},
		{"limit", func(d *Document) { d.Parameters.LimitRadiusCoef = -1 }, "parameters.limit_radius_coef"},
		{"no wells", func(d *Document) { d.Wells = nil }, "wells"},
		{"bad role", func(d *Document) { d.Wells[0].Role = "flare" }, "wells[0].role"},
		{"duplicate well", func(d *Document) { d.Wells[1].Name = "1" }, "wells[1].name"},
		{"short contour", func(d *Document) {
			d.Contours = []Contour{{Name: "c", Vertices: []geo.Point2D{geo.Pt(0, 0), geo.Pt(1, 1)}}}
		}, "contours[0].vertices"},
		{"negative pvt", func(d *Document) { d.PVT = &pvt.Table{Default: -1} }, "pvt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(doc)
			r := ValidateSchema(doc)
			if r.Valid {
				t.Fatal("expected invalid report")
			}
			if !r.HasError(tt.path) {
				t.Errorf("expected error at %s, got %+v", tt.path, r.Errors)
			}
		})
	}
}

func TestValidateSchemaSameNameOnOtherHorizon(t *testing.T) {
	doc := validDocument()
	doc.Wells = append(doc.Wells, well.Record{Name: "1", Role: "producer", XT1: 100, YT1: 100, Horizon: "AB2"})
	if r := ValidateSchema(doc); !r.Valid {
		t.Errorf("same name on another horizon should be valid, got %+v", r.Errors)
	}
}

func TestValidateSchemaWarnings(t *testing.T) {
	doc := validDocument()
	doc.Parameters.SeparationByYears = 1
	doc.Parameters.Exclusions = []string{"ghost"}
	r := ValidateSchema(doc)
	if !r.Valid {
		t.Fatalf("expected valid report, got %+v", r.Errors)
	}
	if len(r.Warnings) != 2 {
		t.Errorf("warnings = %d, want 2: %+v", len(r.Warnings), r.Warnings)
	}
}

func TestBuildSkipsWellsWithoutHorizon(t *testing.T) {
	doc := validDocument()
	doc.Wells = append(doc.Wells, well.Record{Name: "3", Role: "producer", XT1: 500, YT1: 100})
	p, r := Build(doc)
	if p == nil {
		t.Fatalf("Build failed: %+v", r.Errors)
	}
	if len(p.Wells) != 2 {
		t.Errorf("wells = %d, want 2", len(p.Wells))
	}
	if len(r.Warnings) != 1 {
		t.Errorf("warnings = %d, want 1", len(r.Warnings))
	}
}

func TestBuildDefaultsTimeCoefficient(t *testing.T) {
	doc := validDocument()
	doc.Parameters.TimeCoefficientDefault = 0.5
	p, r := Build(doc)
	if p == nil {
		t.Fatalf("Build failed: %+v", r.Errors)
	}
	c, err := p.PVT.Coefficient(p.Wells[0], "AB1")
	if err != nil {
		t.Fatalf("coefficient: %v", err)
	}
	if c.Value != 0.5 || c.Source != pvt.SourceDefault {
		t.Errorf("coefficient = %+v, want default 0.5", c)
	}
}

func TestBuildInvalidReturnsNil(t *testing.T) {
	doc := validDocument()
	doc.Parameters.Percent = -5
	p, r := Build(doc)
	if p != nil {
		t.Error("expected nil project for invalid document")
	}
	if r.Valid {
		t.Error("expected invalid report")
	}
}
