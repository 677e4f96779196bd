package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Vladislav-Dmitriev/well-net/internal/store"
	"github.com/Vladislav-Dmitriev/well-net/pkg/cost"
	"github.com/Vladislav-Dmitriev/well-net/pkg/firstrow"
	"github.com/Vladislav-Dmitriev/well-net/pkg/network"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
)

func printValidationReport(out io.Writer, r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Fprintf(out, "ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			printEntry(out, e)
			for _, s := range e.Suggestions {
				fmt.Fprintf(out, "    * %s\n", s)
			}
		}
		fmt.Fprintln(out)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(out, "WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			printEntry(out, w)
		}
		fmt.Fprintln(out)
	}

	if len(r.Info) > 0 {
		fmt.Fprintf(out, "INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Fprintf(out, "  [%s] %s\n", i.Level, i.Message)
			if i.Scope != "" {
				fmt.Fprintf(out, "    in %s\n", i.Scope)
			}
		}
		fmt.Fprintln(out)
	}

	if r.Valid {
		fmt.Fprintf(out, "Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Fprintf(out, "Result: INVALID (%s)\n", r.Summary)
	}
}

func printEntry(out io.Writer, e validation.Result) {
	fmt.Fprintf(out, "  [%s] %s\n", e.Level, e.Message)
	if e.Path != "" {
		fmt.Fprintf(out, "    -> %s = %v\n", e.Path, e.ActualValue)
	}
	if e.Scope != "" {
		fmt.Fprintf(out, "    in %s\n", e.Scope)
	}
	if e.Expected != "" {
		fmt.Fprintf(out, "    expected: %s\n", e.Expected)
	}
}

func printDesign(out io.Writer, res *network.Result) {
	fmt.Fprintf(out, "Monitoring network: %s\n", res.Project)
	fmt.Fprintln(out, strings.Repeat("=", 20+len(res.Project)))
	fmt.Fprintln(out)

	for _, k := range res.Keys() {
		printTriple(out, res.Triples[k])
	}

	if len(res.Skipped) > 0 {
		fmt.Fprint(out, "Empty networks (no producers): ")
		names := make([]string, len(res.Skipped))
		for i, k := range res.Skipped {
			names[i] = k.String()
		}
		fmt.Fprintln(out, strings.Join(names, ", "))
		fmt.Fprintln(out)
	}
	if len(res.Failures) > 0 {
		fmt.Fprintf(out, "Failed triples (%d):\n", len(res.Failures))
		for _, k := range res.FailedKeys() {
			fmt.Fprintf(out, "  %s: %s\n", k, res.Failures[k])
		}
		fmt.Fprintln(out)
	}
}

func printTriple(out io.Writer, t *network.TripleResult) {
	fb := ""
	if t.FellBack {
		fb = " (fallback)"
	}
	fmt.Fprintf(out, "%s\n", t.Key)
	fmt.Fprintf(out, "  mean radius %.1f m%s, zone radius %.1f m\n", t.MeanRadius, fb, t.ZoneRadius)

	fmt.Fprintf(out, "  %-12s %-12s %-10s %4s %10s %10s %10s  %s\n",
		"Well", "Role", "Kind", "Year", "MinDist", "Days", "OilLoss", "Covers")
	fmt.Fprintf(out, "  %-12s %-12s %-10s %4s %10s %10s %10s  %s\n",
		"------------", "------------", "----------", "----", "----------", "----------", "----------", "------")
	for _, s := range t.Selected {
		name := s.Name
		if s.Forced {
			name += "*"
		}
		fmt.Fprintf(out, "  %-12s %-12s %-10s %4d %10.1f %10.2f %10.2f  %s\n",
			name, s.Role, s.Kind, s.SurveyYear, s.MinDistance, s.ResearchTime, s.OilLoss, strings.Join(s.Covers, ","))
	}

	st := t.Stats
	fmt.Fprintf(out, "  shares: producers %.0f%% of %d, injectors %.0f%% of %d, observation %.0f%% of %d\n",
		100*st.ProducerShare, st.Producers, 100*st.InjectorShare, st.Injectors, 100*st.ObservationShare, st.Observation)
	fmt.Fprintf(out, "  area coverage: %.1f%%\n", 100*st.AreaCoverage)
	if st.MissingCoefficients > 0 || st.DefaultCoefficients > 0 {
		fmt.Fprintf(out, "  time coefficients: %d default, %d missing\n", st.DefaultCoefficients, st.MissingCoefficients)
	}
	if len(t.NotCovered) > 0 {
		fmt.Fprintf(out, "  not covered: %s\n", strings.Join(t.NotCovered, ", "))
	}
	if len(t.BlindZone) > 0 {
		fmt.Fprintf(out, "  blind zone: %s\n", strings.Join(t.BlindZone, ", "))
	}
	fmt.Fprintln(out)
}

func printCostReport(out io.Writer, r *cost.Report) {
	title := fmt.Sprintf("Survey cost %s", r.Key)
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, strings.Repeat("=", len(title)))
	fmt.Fprintln(out)

	printBreakdownTable(out, &r.Estimate)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "By role")
	fmt.Fprintln(out, "-------")
	for _, role := range cost.Roles() {
		b, ok := r.ByRole[role]
		if !ok {
			continue
		}
		fmt.Fprintf(out, "  %-12s %3d wells  %10.2f days\n", role, b.Wells, b.ResearchDays)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Longest survey:       %s days\n", formatAmount(r.Summary.LongestSurveyDays))
	if r.Summary.MissingCoefficients > 0 {
		fmt.Fprintf(out, "  Missing coefficients: %d\n", r.Summary.MissingCoefficients)
	}
	fmt.Fprintln(out)
}

func printBreakdownTable(out io.Writer, sc *cost.SurveyCost) {
	fmt.Fprintf(out, "%-16s %12s %12s %12s %12s\n", "Item", "Main", "Year 1", "Year 2", "Total")
	fmt.Fprintf(out, "%-16s %12s %12s %12s %12s\n",
		"----------------", "------------", "------------", "------------", "------------")

	rows := []struct {
		label string
		vals  [4]float64
	}{
		{"Wells", [4]float64{float64(sc.Main.Wells), float64(sc.Year1.Wells), float64(sc.Year2.Wells), float64(sc.Total.Wells)}},
		{"Research days", [4]float64{sc.Main.ResearchDays, sc.Year1.ResearchDays, sc.Year2.ResearchDays, sc.Total.ResearchDays}},
		{"Oil loss", [4]float64{sc.Main.OilLoss, sc.Year1.OilLoss, sc.Year2.OilLoss, sc.Total.OilLoss}},
		{"Gas loss", [4]float64{sc.Main.GasLoss, sc.Year1.GasLoss, sc.Year2.GasLoss, sc.Total.GasLoss}},
		{"Injection loss", [4]float64{sc.Main.InjectionLoss, sc.Year1.InjectionLoss, sc.Year2.InjectionLoss, sc.Total.InjectionLoss}},
	}

	for _, row := range rows {
		fmt.Fprintf(out, "%-16s", row.label)
		for _, v := range row.vals {
			fmt.Fprintf(out, " %12s", formatAmount(v))
		}
		fmt.Fprintln(out)
	}
}

func formatAmount(v float64) string {
	if v >= 1_000_000 {
		return fmt.Sprintf("%.2fM", v/1_000_000)
	}
	if v >= 10_000 {
		return fmt.Sprintf("%.1fK", v/1_000)
	}
	return fmt.Sprintf("%.1f", v)
}

func printRadius(out io.Writer, rows []radiusRow) {
	fmt.Fprintf(out, "%-16s %-10s %6s %12s %9s %10s\n", "Contour", "Horizon", "Wells", "MeanRadius", "Fallback", "Anomalies")
	fmt.Fprintf(out, "%-16s %-10s %6s %12s %9s %10s\n",
		"----------------", "----------", "------", "------------", "---------", "----------")
	for _, r := range rows {
		fmt.Fprintf(out, "%-16s %-10s %6d %12.1f %9t %10d\n",
			r.Contour, r.Horizon, r.Wells, r.Result.MeanRadius, r.Result.FellBack, len(r.Result.Anomalies))
	}
}

func printFirstRow(out io.Writer, horizon string, fr firstrow.Result) {
	fmt.Fprintf(out, "First row of %s on %s: %s\n", fr.Well, horizon, strings.Join(fr.Wells, ", "))
	for _, pt := range fr.Points {
		fmt.Fprintf(out, "  from (%.1f, %.1f):\n", pt.Point.X, pt.Point.Y)
		for _, s := range pt.Sectors {
			fmt.Fprintf(out, "    %-12s [%7.2f, %7.2f] deg  %8.1f m\n", s.Well, s.Min(), s.Max(), s.Distance)
		}
	}
	for _, an := range fr.Anomalies {
		fmt.Fprintf(out, "  anomaly: rotation did not converge after %d attempts, dropped %s\n", an.Attempts, an.Dropped)
	}
}

func printRuns(out io.Writer, runs []store.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No stored runs.")
		return
	}
	fmt.Fprintf(out, "%-36s %-20s %-20s %7s %8s %5s\n", "ID", "Project", "Created", "Triples", "Failures", "Valid")
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s %-20s %-20s %7d %8d %5t\n",
			r.ID, r.Project, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Triples, r.Failures, r.Valid)
	}
}

func printWellHistory(out io.Writer, name string, hist []store.Selection) {
	if len(hist) == 0 {
		fmt.Fprintf(out, "%s was never selected.\n", name)
		return
	}
	fmt.Fprintf(out, "%s selected in %d triples:\n", name, len(hist))
	for _, h := range hist {
		fmt.Fprintf(out, "  %s  %-24s %-12s year %d  %.2f days\n", h.RunID, h.Key, h.Role, h.SurveyYear, h.ResearchTime)
	}
}
