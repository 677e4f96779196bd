package project

import (
	"fmt"
	"math"
	"strings"

	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// ValidateSchema checks a document for structural correctness before any
// geometry is computed.
func ValidateSchema(doc *Document) *validation.Report {
	r := validation.NewReport()

	validateAngles(doc.Parameters, r)
	validateCoverage(doc.Parameters, r)
	validateCoefficients(doc.Parameters, r)
	validatePrecedence(doc.Parameters, r)
	validateBlindZone(doc.Parameters, r)
	validateWells(doc, r)
	validateContours(doc.Contours, r)
	if doc.PVT != nil {
		if err := doc.PVT.Validate(); err != nil {
			r.AddError(validation.Result{
				Level:   validation.LevelSchema,
				Message: err.Error(),
				Path:    "pvt",
			})
		}
	}

	return r
}

func outOfRange(v, lo, hi float64) bool {
	return math.IsNaN(v) || v < lo || v > hi
}

func validateAngles(p Parameters, r *validation.Report) {
	if outOfRange(p.VerticalWellAngle, 0, 89.999) {
		r.AddError(validation.Result{
			Level:       validation.LevelSchema,
			Message:     "vertical_well_angle must be within [0, 90)",
			Path:        "parameters.vertical_well_angle",
			ActualValue: p.VerticalWellAngle,
			Expected:    "0 <= angle < 90",
		})
	}
	if outOfRange(p.MaxOverlapPercent, 0, 100) {
		r.AddError(validation.Result{
			Level:       validation.LevelSchema,
			Message:     "max_overlap_percent must be within [0, 100]",
			Path:        "parameters.max_overlap_percent",
			ActualValue: p.MaxOverlapPercent,
			Expected:    "0..100",
		})
	}
	for name, v := range map[string]float64{
		"angle_horizontal_t1": p.AngleHorizontalT1,
		"angle_horizontal_t3": p.AngleHorizontalT3,
	} {
		if outOfRange(v, 0, 179.999) {
			r.AddError(validation.Result{
				Level:       validation.LevelSchema,
				Message:     fmt.Sprintf("%s must be within [0, 180)", name),
				Path:        "parameters." + name,
				ActualValue: v,
				Expected:    "0 <= angle < 180",
			})
		}
	}
	if !(p.MaxDistance > 0) || math.IsInf(p.MaxDistance, 0) {
		r.AddError(validation.Result{
			Level:       validation.LevelSchema,
			Message:     "max_distance must be a positive length",
			Path:        "parameters.max_distance",
			ActualValue: p.MaxDistance,
			Expected:    "> 0",
		})
	}
	if p.MinHorizontalLength < 0 {
		r.AddError(validation.Result{
			Level:       validation.LevelSchema,
			Message:     "min_horizontal_length must be >= 0",
			Path:        "parameters.min_horizontal_length",
			ActualValue: p.MinHorizontalLength,
			Expected:    ">= 0",
		})
	}
}

func validateCoverage(p Parameters, r *validation.Report) {
	if outOfRange(p.Percent, 0, 100) {
		r.AddError(validation.Result{
			Level:       validation.LevelSchema,
			Message:     "percent must be within [0, 100]",
			Path:        "parameters.percent",
			ActualValue: p.Percent,
			Expected:    "0..100",
		})
	}
	if err := p.CoverageOptions().Validate(); err != nil && !r.HasError("parameters.percent") {
		r.AddError(validation.Result{
			Level:   validation.LevelSchema,
			Message: err.Error(),
			Path:    "parameters.mode",
		})
	}
	if p.AreaCellSize < 0 {
		r.AddError(validation.Result{
			Level:       validation.LevelSchema,
			Message:     "area_cell_size must be >= 0",
			Path:        "parameters.area_cell_size",
			ActualValue: p.AreaCellSize,
		})
	}
	if p.TimeCoefficientDefault < 0 {
		r.AddError(validation.Result{
			Level:       validation.LevelSchema,
			Message:     "time_coefficient_default must be >= 0",
			Path:        "parameters.time_coefficient_default",
			ActualValue: p.TimeCoefficientDefault,
		})
	}
}

func validateCoefficients(p Parameters, r *validation.Report) {
	if len(p.MultCoef) == 0 {
		r.AddError(validation.Result{
			Level:       validation.LevelSchema,
			Message:     "mult_coef must list at least one radius multiplier",
			Path:        "parameters.mult_coef",
			Expected:    "e.g. [1, 1.5, 2]",
			Suggestions: []string{"Use mult_coef: [1] for a single pass at the mean radius"},
		})
		return
	}
	seen := map[float64]bool{}
	for i, k := range p.MultCoef {
		path := fmt.Sprintf("parameters.mult_coef[%d]", i)
		switch {
		case math.IsNaN(k) || k < 0:
			r.AddError(validation.Result{
				Level:       validation.LevelSchema,
				Message:     "radius multiplier must be >= 0",
				Path:        path,
				ActualValue: k,
				Expected:    ">= 0",
			})
		case k == 0:
			r.AddWarning(validation.Result{
				Level:   validation.LevelSchema,
				Message: "radius multiplier 0 yields empty zones; only isolated producers will be selected",
				Path:    path,
			})
		}
		if seen[k] {
			r.AddError(validation.Result{
				Level:       validation.LevelSchema,
				Message:     fmt.Sprintf("duplicate radius multiplier %g", k),
				Path:        path,
				ActualValue: k,
			})
		}
		seen[k] = true
	}
}

func validatePrecedence(p Parameters, r *validation.Report) {
	if len(p.Precedence) == 0 {
		r.AddError(validation.Result{
			Level:    validation.LevelSchema,
			Message:  "precedence must list at least one role",
			Path:     "parameters.precedence",
			Expected: "[observation, injector, producer]",
		})
		return
	}
	seen := map[well.Role]bool{}
	for i, role := range p.Precedence {
		path := fmt.Sprintf("parameters.precedence[%d]", i)
		if !role.Valid() {
			r.AddError(validation.Result{
				Level:       validation.LevelSchema,
				Message:     "unknown role in precedence",
				Path:        path,
				ActualValue: int(role),
			})
			continue
		}
		if seen[role] {
			r.AddError(validation.Result{
				Level:       validation.LevelSchema,
				Message:     fmt.Sprintf("role %s listed twice", role),
				Path:        path,
				ActualValue: role.String(),
			})
		}
		seen[role] = true
		if role == well.Producer && i != len(p.Precedence)-1 {
			r.AddError(validation.Result{
				Level:       validation.LevelSchema,
				Message:     "the producer pass resolves isolated producers and must come last",
				Path:        path,
				ActualValue: role.String(),
			})
		}
	}
}

func validateBlindZone(p Parameters, r *validation.Report) {
	if math.IsNaN(p.LimitRadiusCoef) || p.LimitRadiusCoef < 0 {
		r.AddError(validation.Result{
			Level:       validation.LevelSchema,
			Message:     "limit_radius_coef must be >= 0",
			Path:        "parameters.limit_radius_coef",
			ActualValue: p.LimitRadiusCoef,
			Expected:    ">= 0 (0 disables blind-zone surveys)",
		})
	}
	if p.SeparationByYears < 0 || p.SeparationByYears > 2 {
		r.AddError(validation.Result{
			Level:       validation.LevelSchema,
			Message:     "separation_by_years must be 0, 1 or 2",
			Path:        "parameters.separation_by_years",
			ActualValue: p.SeparationByYears,
		})
	}
	if p.SeparationByYears > 0 && p.LimitRadiusCoef == 0 {
		r.AddWarning(validation.Result{
			Level:   validation.LevelSchema,
			Message: "separation_by_years has no effect while limit_radius_coef is 0",
			Path:    "parameters.separation_by_years",
		})
	}
}

func validateWells(doc *Document, r *validation.Report) {
	if len(doc.Wells) == 0 {
		r.AddError(validation.Result{
			Level:    validation.LevelSchema,
			Message:  "project has no wells",
			Path:     "wells",
			Expected: "at least 1 well",
		})
		return
	}
	// name -> horizon -> first index
	seen := map[string]map[string]int{}
	for i, rec := range doc.Wells {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			r.AddError(validation.Result{
				Level:   validation.LevelSchema,
				Message: "well name is empty",
				Path:    fmt.Sprintf("wells[%d].name", i),
			})
			continue
		}
		if _, err := well.ParseRole(rec.Role); err != nil {
			r.AddError(validation.Result{
				Level:       validation.LevelSchema,
				Message:     fmt.Sprintf("well %s: unknown role", name),
				Path:        fmt.Sprintf("wells[%d].role", i),
				ActualValue: rec.Role,
				Expected:    "producer, injector or observation",
			})
		}
		if rec.OilRate < 0 || rec.Injectivity < 0 || rec.FluidRate < 0 || rec.GasRate < 0 {
			r.AddError(validation.Result{
				Level:   validation.LevelSchema,
				Message: fmt.Sprintf("well %s: rates must be >= 0", name),
				Path:    fmt.Sprintf("wells[%d]", i),
			})
		}
		if seen[name] == nil {
			seen[name] = map[string]int{}
		}
		for _, h := range well.SplitHorizons(rec.Horizon) {
			if first, dup := seen[name][h]; dup {
				r.AddError(validation.Result{
					Level:       validation.LevelSchema,
					Message:     fmt.Sprintf("well %s listed twice on horizon %s", name, h),
					Path:        fmt.Sprintf("wells[%d].name", i),
					ActualValue: name,
					Expected:    fmt.Sprintf("unique name per horizon (first at wells[%d])", first),
				})
				continue
			}
			seen[name][h] = i
		}
	}
	for _, ex := range doc.Parameters.Exclusions {
		if _, ok := seen[ex]; !ok {
			r.AddWarning(validation.Result{
				Level:       validation.LevelSchema,
				Message:     fmt.Sprintf("excluded well %s is not in the project", ex),
				Path:        "parameters.exclusions",
				ActualValue: ex,
			})
		}
	}
}

func validateContours(contours []Contour, r *validation.Report) {
	names := map[string]bool{}
	for i, c := range contours {
		path := fmt.Sprintf("contours[%d]", i)
		if strings.TrimSpace(c.Name) == "" {
			r.AddError(validation.Result{
				Level:   validation.LevelSchema,
				Message: "contour name is empty",
				Path:    path + ".name",
			})
		} else if names[c.Name] {
			r.AddError(validation.Result{
				Level:       validation.LevelSchema,
				Message:     fmt.Sprintf("duplicate contour %s", c.Name),
				Path:        path + ".name",
				ActualValue: c.Name,
			})
		}
		names[c.Name] = true
		if len(c.Vertices) < 3 {
			r.AddError(validation.Result{
				Level:       validation.LevelSchema,
				Message:     fmt.Sprintf("contour %s needs at least 3 vertices", c.Name),
				Path:        path + ".vertices",
				ActualValue: len(c.Vertices),
				Expected:    ">= 3",
			})
		}
	}
}
