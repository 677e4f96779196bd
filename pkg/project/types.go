package project

import (
	"sort"

	"github.com/Vladislav-Dmitriev/well-net/pkg/coverage"
	"github.com/Vladislav-Dmitriev/well-net/pkg/firstrow"
	"github.com/Vladislav-Dmitriev/well-net/pkg/geo"
	"github.com/Vladislav-Dmitriev/well-net/pkg/pvt"
	"github.com/Vladislav-Dmitriev/well-net/pkg/radius"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// DefaultContour is the name of the implicit contour holding every well
// when none is configured.
const DefaultContour = "field"

// Parameters are the design settings of a project.
type Parameters struct {
	// Sector construction (degrees) and occlusion limit (percent).
	VerticalWellAngle float64 `yaml:"vertical_well_angle" json:"vertical_well_angle"`
	MaxOverlapPercent float64 `yaml:"max_overlap_percent" json:"max_overlap_percent"`
	AngleHorizontalT1 float64 `yaml:"angle_horizontal_t1" json:"angle_horizontal_t1"`
	AngleHorizontalT3 float64 `yaml:"angle_horizontal_t3" json:"angle_horizontal_t3"`

	// MaxDistance bounds first-row search and is the fallback radius (m).
	MaxDistance float64 `yaml:"max_distance" json:"max_distance"`

	// Coverage predicate.
	Percent float64       `yaml:"percent" json:"percent"`
	Mode    coverage.Mode `yaml:"mode" json:"mode"`

	// MultCoef lists the radius multipliers evaluated per horizon.
	MultCoef []float64 `yaml:"mult_coef" json:"mult_coef"`
	// Precedence orders the monitoring passes. Producer, if listed, is the
	// isolated-producer pass and must come last.
	Precedence []well.Role `yaml:"precedence" json:"precedence"`

	MinHorizontalLength      float64  `yaml:"min_horizontal_length" json:"min_horizontal_length"`
	LimitProducersByMeanRate bool     `yaml:"limit_producers_by_mean_rate" json:"limit_producers_by_mean_rate"`
	LimitRadiusCoef          float64  `yaml:"limit_radius_coef" json:"limit_radius_coef"`
	SeparationByYears        int      `yaml:"separation_by_years" json:"separation_by_years"`
	Exclusions               []string `yaml:"exclusions" json:"exclusions,omitempty"`

	// TimeCoefficientDefault is used when no pvt table is supplied.
	TimeCoefficientDefault float64 `yaml:"time_coefficient_default" json:"time_coefficient_default"`
	// AreaCellSize is the sampling step (m) for the area coverage ratio;
	// 0 picks one from the field extent.
	AreaCellSize float64 `yaml:"area_cell_size" json:"area_cell_size"`
}

// DefaultParameters returns the parameter set used for missing keys.
func DefaultParameters() Parameters {
	return Parameters{
		VerticalWellAngle:   10,
		MaxOverlapPercent:   30,
		AngleHorizontalT1:   5,
		AngleHorizontalT3:   5,
		MaxDistance:         1000,
		Percent:             30,
		Mode:                coverage.ModeLength,
		MultCoef:            []float64{1},
		Precedence:          []well.Role{well.Observation, well.Injector, well.Producer},
		MinHorizontalLength: 50,
	}
}

// Angles returns the sector construction settings.
func (p Parameters) Angles() firstrow.Angles {
	return firstrow.Angles{
		Vertical:          p.VerticalWellAngle,
		MaxOverlapPercent: p.MaxOverlapPercent,
		HorizontalT1:      p.AngleHorizontalT1,
		HorizontalT3:      p.AngleHorizontalT3,
	}
}

// RadiusParams returns the mean-radius estimator settings.
func (p Parameters) RadiusParams() radius.Params {
	return radius.Params{Angles: p.Angles(), MaxDistance: p.MaxDistance}
}

// CoverageOptions returns the coverage predicate settings.
func (p Parameters) CoverageOptions() coverage.Options {
	return coverage.Options{Percent: p.Percent, Mode: p.Mode}
}

// Contour is a named area of the field. An empty ring contains everything.
type Contour struct {
	Name     string        `yaml:"name" json:"name"`
	Vertices []geo.Point2D `yaml:"vertices" json:"vertices"`
}

// Polygon returns the contour ring in CCW order.
func (c Contour) Polygon() geo.Polygon {
	return geo.NewPolygon(c.Vertices...).EnsureCCW()
}

// Contains reports whether p lies inside the contour.
func (c Contour) Contains(p geo.Point2D) bool {
	if len(c.Vertices) == 0 {
		return true
	}
	return c.Polygon().Contains(p)
}

// Document is the serialised form of a project: what project.yaml holds
// and what the HTTP API accepts.
type Document struct {
	Name       string        `yaml:"name" json:"name"`
	Parameters Parameters    `yaml:"parameters" json:"parameters"`
	Wells      []well.Record `yaml:"wells" json:"wells"`
	Contours   []Contour     `yaml:"contours" json:"contours,omitempty"`
	PVT        *pvt.Table    `yaml:"pvt" json:"pvt,omitempty"`
}

// NewDocument returns a document with default parameters.
func NewDocument() *Document {
	return &Document{Parameters: DefaultParameters()}
}

// Project is a validated, classified project ready for design.
type Project struct {
	Name       string
	Parameters Parameters
	Wells      []well.Well
	Contours   []Contour
	PVT        pvt.Provider
}

// Horizons returns every horizon worked by any well, sorted.
func (p *Project) Horizons() []string {
	return HorizonsOf(p.Wells)
}

// HorizonsOf returns the sorted horizons worked by wells.
func HorizonsOf(wells []well.Well) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range wells {
		for _, h := range w.Horizons {
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	sort.Strings(out)
	return out
}

// ContourWells returns the wells whose entry point lies in c.
func (p *Project) ContourWells(c Contour) []well.Well {
	var out []well.Well
	for _, w := range p.Wells {
		if c.Contains(w.EntryPoint()) {
			out = append(out, w)
		}
	}
	return out
}

// EffectiveContours returns the configured contours or the implicit
// whole-field contour.
func (p *Project) EffectiveContours() []Contour {
	if len(p.Contours) == 0 {
		return []Contour{{Name: DefaultContour}}
	}
	return p.Contours
}

// HorizonWells filters wells working horizon h.
func HorizonWells(wells []well.Well, h string) []well.Well {
	var out []well.Well
	for _, w := range wells {
		if w.OnHorizon(h) {
			out = append(out, w)
		}
	}
	return out
}
