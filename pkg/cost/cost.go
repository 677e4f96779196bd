// Package cost totals the price of surveying a designed network: research
// days and the production deferred while wells are shut in.
package cost

import (
	"math"

	"github.com/Vladislav-Dmitriev/well-net/pkg/network"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// Breakdown itemizes survey cost.
type Breakdown struct {
	Wells         int     `json:"wells"`
	ResearchDays  float64 `json:"research_days"`
	OilLoss       float64 `json:"oil_loss"`
	GasLoss       float64 `json:"gas_loss"`
	InjectionLoss float64 `json:"injection_loss"`
}

func (b *Breakdown) add(s network.Selected) {
	b.Wells++
	b.ResearchDays += s.ResearchTime
	b.OilLoss += s.OilLoss
	b.GasLoss += s.GasLoss
	b.InjectionLoss += s.InjectionLoss
}

func (b *Breakdown) merge(o Breakdown) {
	b.Wells += o.Wells
	b.ResearchDays += o.ResearchDays
	b.OilLoss += o.OilLoss
	b.GasLoss += o.GasLoss
	b.InjectionLoss += o.InjectionLoss
}

// SurveyCost separates cost by survey year. Year 0 is the main network.
type SurveyCost struct {
	Main  Breakdown `json:"main"`
	Year1 Breakdown `json:"year_1"`
	Year2 Breakdown `json:"year_2"`
	Total Breakdown `json:"total"`
}

// Report is the cost of one triple.
type Report struct {
	Key      network.Key          `json:"key"`
	Estimate SurveyCost           `json:"estimate"`
	ByRole   map[string]Breakdown `json:"by_role"`

	Summary struct {
		// LongestSurveyDays is the campaign length when every well of a
		// year is surveyed at once.
		LongestSurveyDays float64 `json:"longest_survey_days"`
		// MissingCoefficients counts wells surveyed for zero days because
		// no time coefficient was known.
		MissingCoefficients int `json:"missing_coefficients"`
	} `json:"summary"`
}

// Estimate totals the survey cost of one designed triple.
func Estimate(tr *network.TripleResult) *Report {
	report := &Report{Key: tr.Key, ByRole: map[string]Breakdown{}}
	longest := map[int]float64{}

	for _, s := range tr.Selected {
		switch s.SurveyYear {
		case 0:
			report.Estimate.Main.add(s)
		case 1:
			report.Estimate.Year1.add(s)
		default:
			report.Estimate.Year2.add(s)
		}
		role := s.Role.String()
		b := report.ByRole[role]
		b.add(s)
		report.ByRole[role] = b
		longest[s.SurveyYear] = math.Max(longest[s.SurveyYear], s.ResearchTime)
	}

	t := &report.Estimate.Total
	t.merge(report.Estimate.Main)
	t.merge(report.Estimate.Year1)
	t.merge(report.Estimate.Year2)

	for _, d := range longest {
		report.Summary.LongestSurveyDays = math.Max(report.Summary.LongestSurveyDays, d)
	}
	report.Summary.MissingCoefficients = tr.Stats.MissingCoefficients
	return report
}

// EstimateAll returns one report per designed triple in key order.
func EstimateAll(res *network.Result) []*Report {
	keys := res.Keys()
	out := make([]*Report, 0, len(keys))
	for _, k := range keys {
		out = append(out, Estimate(res.Triples[k]))
	}
	return out
}

// Roles lists the roles in report order.
func Roles() []string {
	return []string{well.Observation.String(), well.Injector.String(), well.Producer.String()}
}
