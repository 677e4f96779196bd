package network

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Vladislav-Dmitriev/well-net/pkg/project"
	"github.com/Vladislav-Dmitriev/well-net/pkg/radius"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
	"github.com/Vladislav-Dmitriev/well-net/pkg/well"
)

// Recorder observes finished triples. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveTriple(key Key, d time.Duration, selected int, err error)
}

// Options configures a design run.
type Options struct {
	Logger *zap.Logger
	// Workers bounds concurrent triples; 0 uses GOMAXPROCS.
	Workers int
	// TripleTimeout bounds one triple; 0 means no limit.
	TripleTimeout time.Duration
	Recorder      Recorder
}

// group is the wells of one contour working one horizon.
type group struct {
	contour string
	horizon string
	wells   []well.Well
	radius  radius.Result
	err     error
}

type slot struct {
	key Key
	res *TripleResult
	err error
}

// Design runs every (contour, horizon, coefficient) triple of a project.
// Mean radii are estimated once per contour and horizon; triples then run
// on a bounded worker pool. A failing triple is recorded and does not stop
// the others.
func Design(ctx context.Context, p *project.Project, opts Options) (*Result, *validation.Report) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	params := p.Parameters

	var groups []*group
	for _, c := range p.EffectiveContours() {
		wells := p.ContourWells(c)
		for _, h := range project.HorizonsOf(wells) {
			groups = append(groups, &group{contour: c.Name, horizon: h, wells: project.HorizonWells(wells, h)})
		}
	}

	// Phase 1: mean radius per contour and horizon.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, gr := range groups {
		gr := gr
		g.Go(func() error {
			gr.radius, gr.err = radius.Estimate(gctx, gr.wells, params.RadiusParams())
			return nil
		})
	}
	_ = g.Wait()

	// Phase 2: one worker per triple, each writing only its own slot.
	var slots []*slot
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, gr := range groups {
		gr := gr
		for _, coef := range params.MultCoef {
			s := &slot{key: Key{Contour: gr.contour, Horizon: gr.horizon, Coefficient: coef}}
			slots = append(slots, s)
			if gr.err != nil {
				s.err = fmt.Errorf("mean radius: %w", gr.err)
				continue
			}
			g.Go(func() error {
				tctx := gctx
				if opts.TripleTimeout > 0 {
					var cancel context.CancelFunc
					tctx, cancel = context.WithTimeout(gctx, opts.TripleTimeout)
					defer cancel()
				}
				tlog := log.With(zap.Stringer("triple", s.key))
				tlog.Debug("triple started", zap.Int("wells", len(gr.wells)))
				s.res, s.err = DesignTriple(tctx, s.key, Input{
					Wells:      gr.wells,
					Radius:     gr.radius,
					Parameters: params,
					PVT:        p.PVT,
					Logger:     tlog,
				})
				return nil
			})
		}
	}
	_ = g.Wait()

	return merge(p.Name, slots, groups, log, opts.Recorder)
}

func merge(name string, slots []*slot, groups []*group, log *zap.Logger, rec Recorder) (*Result, *validation.Report) {
	res := &Result{
		Project:  name,
		Triples:  make(map[Key]*TripleResult),
		Failures: make(map[Key]string),
	}
	report := validation.NewReport()

	for _, gr := range groups {
		scope := gr.contour + "/" + gr.horizon
		if gr.err != nil {
			log.Error("mean radius failed", zap.String("scope", scope), zap.Error(gr.err))
			continue
		}
		for _, an := range gr.radius.Anomalies {
			log.Warn("wraparound did not converge",
				zap.String("scope", scope),
				zap.String("reference", an.Reference),
				zap.String("dropped", an.Dropped),
				zap.Int("attempts", an.Attempts))
			report.AddWarning(validation.Result{
				Level: validation.LevelGeometry,
				Message: fmt.Sprintf("sector rotation around %s did not converge after %d attempts; dropped %s",
					an.Reference, an.Attempts, an.Dropped),
				Scope: scope,
			})
		}
		if gr.radius.FellBack {
			report.AddInfo(validation.Result{
				Level:   validation.LevelGeometry,
				Message: fmt.Sprintf("no first-row relationships; radius falls back to %g", gr.radius.MeanRadius),
				Scope:   scope,
			})
		}
	}

	for _, s := range slots {
		scope := s.key.String()
		if s.err != nil {
			res.Failures[s.key] = s.err.Error()
			level := validation.LevelCoverage
			if validation.IsConfigurationError(s.err) {
				level = validation.LevelSchema
			}
			report.AddError(validation.Result{Level: level, Message: s.err.Error(), Scope: scope})
			log.Error("triple failed", zap.String("triple", scope), zap.Error(s.err))
			if rec != nil {
				rec.ObserveTriple(s.key, 0, 0, s.err)
			}
			continue
		}

		tr := s.res
		res.Triples[s.key] = tr
		if tr.Stats.Producers == 0 {
			res.Skipped = append(res.Skipped, s.key)
			report.AddInfo(validation.Result{
				Level:   validation.LevelCoverage,
				Message: "no producers to cover; empty network",
				Scope:   scope,
			})
		}
		if len(tr.NotCovered) > 0 {
			log.Info("producers not covered by any monitoring well",
				zap.String("triple", scope), zap.Strings("wells", tr.NotCovered))
			report.AddInfo(validation.Result{
				Level:       validation.LevelCoverage,
				Message:     fmt.Sprintf("%d producers not covered by any monitoring well", len(tr.NotCovered)),
				Scope:       scope,
				ActualValue: tr.NotCovered,
			})
		}
		log.Info("triple designed",
			zap.String("triple", scope),
			zap.Float64("zone_radius", tr.ZoneRadius),
			zap.Int("selected", len(tr.Selected)),
			zap.Duration("duration", tr.Duration))
		if rec != nil {
			rec.ObserveTriple(s.key, tr.Duration, len(tr.Selected), nil)
		}
	}
	return res, report
}
