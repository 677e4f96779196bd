package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Vladislav-Dmitriev/well-net/internal/store"
	"github.com/Vladislav-Dmitriev/well-net/pkg/cost"
	"github.com/Vladislav-Dmitriev/well-net/pkg/firstrow"
	"github.com/Vladislav-Dmitriev/well-net/pkg/network"
	"github.com/Vladislav-Dmitriev/well-net/pkg/project"
	"github.com/Vladislav-Dmitriev/well-net/pkg/radius"
	"github.com/Vladislav-Dmitriev/well-net/pkg/scene2d"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

type designOptions struct {
	format        string
	storePath     string
	workers       int
	tripleTimeout time.Duration
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadAndBuild loads the project and prints the report when it is rejected.
func loadAndBuild(projectPath, format string, out io.Writer) (*project.Project, *validation.Report, error) {
	p, report, err := project.LoadAndBuild(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading project: %w", err)
	}
	if p == nil {
		if format == "json" {
			writeJSON(out, report)
		} else {
			printValidationReport(out, report)
		}
		return nil, report, errInvalid
	}
	return p, report, nil
}

func runValidate(projectPath, format string, out io.Writer) error {
	_, report, err := loadAndBuild(projectPath, format, out)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(out, report)
	}
	printValidationReport(out, report)
	return nil
}

func runDesign(ctx context.Context, a *app, projectPath string, opts designOptions, out io.Writer) error {
	p, report, err := loadAndBuild(projectPath, opts.format, out)
	if err != nil {
		return err
	}

	res, runReport := network.Design(ctx, p, network.Options{
		Logger:        a.log,
		Workers:       opts.workers,
		TripleTimeout: opts.tripleTimeout,
	})
	report.Merge(runReport)

	var runID string
	if opts.storePath != "" {
		st, err := store.Open(opts.storePath)
		if err != nil {
			return err
		}
		defer st.Close()
		if runID, err = st.SaveRun(ctx, res, report); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		a.log.Info("run saved", zap.String("id", runID), zap.String("store", opts.storePath))
	}

	if opts.format == "json" {
		if err := writeJSON(out, map[string]any{
			"run_id": runID,
			"result": res,
			"report": report,
		}); err != nil {
			return err
		}
	} else {
		printDesign(out, res)
		printValidationReport(out, report)
		if runID != "" {
			fmt.Fprintf(out, "Run saved: %s\n", runID)
		}
	}

	if len(res.Failures) > 0 {
		return fmt.Errorf("%d of %d triples failed", len(res.Failures), len(res.Failures)+len(res.Triples))
	}
	return ctx.Err()
}

func runCost(ctx context.Context, a *app, projectPath, format string, out io.Writer) error {
	p, _, err := loadAndBuild(projectPath, format, out)
	if err != nil {
		return err
	}
	res, report := network.Design(ctx, p, network.Options{
		Logger:        a.log,
		Workers:       a.cfg.Engine.Workers,
		TripleTimeout: a.cfg.Engine.TripleTimeout,
	})
	reports := cost.EstimateAll(res)

	if format == "json" {
		return writeJSON(out, reports)
	}
	for _, r := range reports {
		printCostReport(out, r)
	}
	if len(report.Errors) > 0 {
		printValidationReport(out, report)
	}
	return nil
}

type radiusRow struct {
	Contour string        `json:"contour"`
	Horizon string        `json:"horizon"`
	Wells   int           `json:"wells"`
	Result  radius.Result `json:"result"`
}

func runRadius(ctx context.Context, a *app, projectPath, format string, out io.Writer) error {
	p, _, err := loadAndBuild(projectPath, format, out)
	if err != nil {
		return err
	}
	params := p.Parameters.RadiusParams()

	var rows []radiusRow
	for _, c := range p.EffectiveContours() {
		wells := p.ContourWells(c)
		for _, h := range project.HorizonsOf(wells) {
			hw := project.HorizonWells(wells, h)
			r, err := radius.Estimate(ctx, hw, params)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", c.Name, h, err)
			}
			for _, an := range r.Anomalies {
				a.log.Warn("wraparound did not converge",
					zap.String("scope", c.Name+"/"+h),
					zap.String("reference", an.Reference),
					zap.String("dropped", an.Dropped))
			}
			rows = append(rows, radiusRow{Contour: c.Name, Horizon: h, Wells: len(hw), Result: r})
		}
	}

	if format == "json" {
		return writeJSON(out, rows)
	}
	printRadius(out, rows)
	return nil
}

func runFirstRow(a *app, projectPath, name, horizon, format string, out io.Writer) error {
	p, _, err := loadAndBuild(projectPath, format, out)
	if err != nil {
		return err
	}

	var ref *well.Well
	for i := range p.Wells {
		w := &p.Wells[i]
		if w.Name != name {
			continue
		}
		if horizon == "" || w.OnHorizon(horizon) {
			ref = w
			break
		}
	}
	if ref == nil {
		if horizon != "" {
			return fmt.Errorf("well %s not found on horizon %s", name, horizon)
		}
		return fmt.Errorf("well %s not found", name)
	}
	if horizon == "" {
		horizon = ref.Horizons[0]
	}

	hw := project.HorizonWells(p.Wells, horizon)
	neighbours := firstrow.Within(*ref, hw, p.Parameters.MaxDistance)
	fr, err := firstrow.Detect(*ref, neighbours, p.Parameters.Angles())
	if err != nil {
		return err
	}
	a.log.Debug("first row detected",
		zap.String("well", name),
		zap.String("horizon", horizon),
		zap.Int("neighbours", len(neighbours)),
		zap.Strings("first_row", fr.Wells))

	if format == "json" {
		return writeJSON(out, fr)
	}
	printFirstRow(out, horizon, fr)
	return nil
}

// runScene prints a rejected project's report as JSON in json mode and as
// text alongside SVG output.
func runScene(ctx context.Context, a *app, projectPath, triple, format string, out io.Writer) error {
	reportFormat := "text"
	if format == "json" {
		reportFormat = "json"
	}
	p, _, err := loadAndBuild(projectPath, reportFormat, out)
	if err != nil {
		return err
	}
	res, _ := network.Design(ctx, p, network.Options{
		Logger:        a.log,
		Workers:       a.cfg.Engine.Workers,
		TripleTimeout: a.cfg.Engine.TripleTimeout,
	})
	keys := res.Keys()
	if len(keys) == 0 {
		return fmt.Errorf("no triple of %s was designed", p.Name)
	}
	key := keys[0]
	if triple != "" {
		if err := key.UnmarshalText([]byte(triple)); err != nil {
			return err
		}
	}
	tr, ok := res.Triples[key]
	if !ok {
		if msg, failed := res.Failures[key]; failed {
			return fmt.Errorf("triple %s failed: %s", key, msg)
		}
		return fmt.Errorf("triple %s was not designed", key)
	}

	scene, err := scene2d.Assemble2D(p, tr)
	if err != nil {
		return err
	}
	if vr := scene2d.Validate(scene); !vr.Valid {
		a.log.Warn("scene failed structural checks", zap.String("triple", key.String()), zap.String("summary", vr.Summary))
	}
	if format == "svg" {
		return scene2d.RenderSVG(out, scene)
	}
	return writeJSON(out, scene)
}

func runListRuns(ctx context.Context, st *store.Store, limit int, format string, out io.Writer) error {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if format == "json" {
		if runs == nil {
			runs = []store.RunSummary{}
		}
		return writeJSON(out, runs)
	}
	printRuns(out, runs)
	return nil
}

func runShowRun(ctx context.Context, st *store.Store, id, format string, out io.Writer) error {
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(out, run)
	}
	fmt.Fprintf(out, "Run %s  project %s  created %s\n\n", run.ID, run.Project, run.CreatedAt.Format(time.RFC3339))
	printDesign(out, run.Result)
	printValidationReport(out, run.Report)
	return nil
}

func runWellHistory(ctx context.Context, st *store.Store, name, format string, out io.Writer) error {
	hist, err := st.WellHistory(ctx, name)
	if err != nil {
		return err
	}
	if format == "json" {
		if hist == nil {
			hist = []store.Selection{}
		}
		return writeJSON(out, hist)
	}
	printWellHistory(out, name, hist)
	return nil
}
