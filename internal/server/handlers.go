package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Vladislav-Dmitriev/well-net/internal/store"
	"github.com/Vladislav-Dmitriev/well-net/pkg/cost"
	"github.com/Vladislav-Dmitriev/well-net/pkg/network"
	"github.com/Vladislav-Dmitriev/well-net/pkg/project"
	"github.com/Vladislav-Dmitriev/well-net/pkg/scene2d"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
)

// DesignResponse is the body of a successful POST /api/design.
type DesignResponse struct {
	RunID  string             `json:"run_id,omitempty"`
	Result *network.Result    `json:"result"`
	Cost   []*cost.Report     `json:"cost"`
	Report *validation.Report `json:"report"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func (s *Server) handleProject(w http.ResponseWriter, _ *http.Request) {
	if s.projectPath == "" {
		writeError(w, http.StatusNotFound, "no project directory configured")
		return
	}
	doc, err := project.LoadProject(s.projectPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	if s.projectPath == "" {
		writeError(w, http.StatusNotFound, "no project directory configured")
		return
	}
	_, report, err := project.LoadAndBuild(s.projectPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleScene designs the project directory and returns the 2D scene of
// one triple, chosen by ?triple=contour/horizon/coefficient (default: the
// first). ?format=svg renders it.
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	if s.projectPath == "" {
		writeError(w, http.StatusNotFound, "no project directory configured")
		return
	}
	p, report, err := project.LoadAndBuild(s.projectPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p == nil {
		writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	}

	res, _ := network.Design(r.Context(), p, network.Options{
		Logger:        s.log,
		Workers:       s.cfg.Engine.Workers,
		TripleTimeout: s.cfg.Engine.TripleTimeout,
		Recorder:      s.metrics,
	})
	keys := res.Keys()
	if len(keys) == 0 {
		writeError(w, http.StatusNotFound, "no designed triples")
		return
	}
	key := keys[0]
	if v := r.URL.Query().Get("triple"); v != "" {
		if err := key.UnmarshalText([]byte(v)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	tr, ok := res.Triples[key]
	if !ok {
		writeError(w, http.StatusNotFound, "triple "+key.String()+" was not designed")
		return
	}

	scene, err := scene2d.Assemble2D(p, tr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if vr := scene2d.Validate(scene); !vr.Valid {
		s.log.Warn("scene failed structural checks", zap.Stringer("triple", key), zap.String("summary", vr.Summary))
	}
	if r.URL.Query().Get("format") == "svg" {
		w.Header().Set("Content-Type", "image/svg+xml")
		if err := scene2d.RenderSVG(w, scene); err != nil {
			s.log.Error("failed to render scene", zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

// readDocument decodes the request body as JSON or, for a YAML content
// type, as a project file. An empty body falls back to the configured
// project directory.
func (s *Server) readDocument(r *http.Request) (*project.Document, int, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, http.StatusRequestEntityTooLarge, err
	}
	if len(body) == 0 {
		if s.projectPath == "" {
			return nil, http.StatusBadRequest, errors.New("empty body and no project directory configured")
		}
		doc, err := project.LoadProject(s.projectPath)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return doc, 0, nil
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/yaml", "application/x-yaml", "text/yaml":
		doc, err := project.Parse(body)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		return doc, 0, nil
	default:
		doc := project.NewDocument()
		if err := json.Unmarshal(body, doc); err != nil {
			return nil, http.StatusBadRequest, err
		}
		return doc, 0, nil
	}
}

func (s *Server) handleDesign(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Server.MaxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)
	}
	doc, code, err := s.readDocument(r)
	if err != nil {
		writeError(w, code, err.Error())
		return
	}

	p, report := project.Build(doc)
	if p == nil {
		s.metrics.ObserveRun("invalid")
		writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	}

	res, runReport := network.Design(r.Context(), p, network.Options{
		Logger:        s.log,
		Workers:       s.cfg.Engine.Workers,
		TripleTimeout: s.cfg.Engine.TripleTimeout,
		Recorder:      s.metrics,
	})
	report.Merge(runReport)

	outcome := "ok"
	if len(res.Failures) > 0 {
		outcome = "partial"
	}
	s.metrics.ObserveRun(outcome)

	resp := DesignResponse{Result: res, Cost: cost.EstimateAll(res), Report: report}
	if s.store != nil {
		id, err := s.store.SaveRun(r.Context(), res, report)
		if err != nil {
			s.log.Error("failed to save run", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.RunID = id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run store is disabled")
		return false
	}
	return true
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	err := s.store.DeleteRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWellHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	hist, err := s.store.WellHistory(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if hist == nil {
		hist = []store.Selection{}
	}
	writeJSON(w, http.StatusOK, hist)
}
