// Package store persists design runs in an embedded sqlite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Vladislav-Dmitriev/well-net/pkg/network"
	"github.com/Vladislav-Dmitriev/well-net/pkg/validation"
)

// ErrNotFound is returned for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// timeLayout is fixed width so that created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	project    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	valid      INTEGER NOT NULL,
	triples    INTEGER NOT NULL,
	failures   INTEGER NOT NULL,
	report     TEXT NOT NULL,
	failed     TEXT NOT NULL,
	skipped    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS triples (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	key         TEXT NOT NULL,
	contour     TEXT NOT NULL,
	horizon     TEXT NOT NULL,
	coefficient REAL NOT NULL,
	zone_radius REAL NOT NULL,
	result      TEXT NOT NULL,
	PRIMARY KEY (run_id, key)
);

CREATE TABLE IF NOT EXISTS selected_wells (
	run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	key           TEXT NOT NULL,
	name          TEXT NOT NULL,
	role          TEXT NOT NULL,
	survey_year   INTEGER NOT NULL,
	research_time REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_selected_name ON selected_wells(name);
`

// Store wraps the sqlite handle.
type Store struct {
	db *sql.DB
}

// RunSummary is one row of the run list.
type RunSummary struct {
	ID        string    `json:"id"`
	Project   string    `json:"project"`
	CreatedAt time.Time `json:"created_at"`
	Valid     bool      `json:"valid"`
	Triples   int       `json:"triples"`
	Failures  int       `json:"failures"`
}

// Run is a stored run with its full result.
type Run struct {
	RunSummary
	Result *network.Result     `json:"result"`
	Report *validation.Report `json:"report"`
}

// Selection records one well chosen in a stored triple.
type Selection struct {
	RunID        string      `json:"run_id"`
	Key          network.Key `json:"key"`
	Name         string      `json:"name"`
	Role         string      `json:"role"`
	SurveyYear   int         `json:"survey_year"`
	ResearchTime float64     `json:"research_time"`
}

// Open opens or creates the database at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a design result with its report and returns the new run ID.
func (s *Store) SaveRun(ctx context.Context, res *network.Result, report *validation.Report) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	if report == nil {
		report = validation.NewReport()
	}
	id := uuid.NewString()

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	failedJSON, err := json.Marshal(res.Failures)
	if err != nil {
		return "", fmt.Errorf("encode failures: %w", err)
	}
	skippedJSON, err := json.Marshal(res.Skipped)
	if err != nil {
		return "", fmt.Errorf("encode skipped: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, project, created_at, valid, triples, failures, report, failed, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, res.Project, time.Now().UTC().Format(timeLayout), boolToInt(report.Valid),
		len(res.Triples), len(res.Failures), string(reportJSON), string(failedJSON), string(skippedJSON))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, k := range res.Keys() {
		tr := res.Triples[k]
		body, err := json.Marshal(tr)
		if err != nil {
			return "", fmt.Errorf("encode triple %s: %w", k, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO triples (run_id, key, contour, horizon, coefficient, zone_radius, result)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, k.String(), k.Contour, k.Horizon, k.Coefficient, tr.ZoneRadius, string(body))
		if err != nil {
			return "", fmt.Errorf("insert triple %s: %w", k, err)
		}
		for _, sel := range tr.Selected {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO selected_wells (run_id, key, name, role, survey_year, research_time)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				id, k.String(), sel.Name, sel.Role.String(), sel.SurveyYear, sel.ResearchTime)
			if err != nil {
				return "", fmt.Errorf("insert selection %s: %w", sel.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	q := `SELECT id, project, created_at, valid, triples, failures FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner, extra ...any) (RunSummary, error) {
	var (
		sum     RunSummary
		created string
	)
	dest := append([]any{&sum.ID, &sum.Project, &created, &sum.Valid, &sum.Triples, &sum.Failures}, extra...)
	if err := row.Scan(dest...); err != nil {
		return RunSummary{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return RunSummary{}, fmt.Errorf("run %s: bad timestamp %q: %w", sum.ID, created, err)
	}
	sum.CreatedAt = t
	return sum, nil
}

// GetRun loads a stored run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var reportJSON, failedJSON, skippedJSON string
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project, created_at, valid, triples, failures, report, failed, skipped FROM runs WHERE id = ?`, id)
	sum, err := scanSummary(row, &reportJSON, &failedJSON, &skippedJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	run := &Run{
		RunSummary: sum,
		Result: &network.Result{
			Project:  sum.Project,
			Triples:  map[network.Key]*network.TripleResult{},
			Failures: map[network.Key]string{},
		},
		Report: &validation.Report{},
	}
	if err := json.Unmarshal([]byte(reportJSON), run.Report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if err := json.Unmarshal([]byte(failedJSON), &run.Result.Failures); err != nil {
		return nil, fmt.Errorf("decode failures: %w", err)
	}
	if err := json.Unmarshal([]byte(skippedJSON), &run.Result.Skipped); err != nil {
		return nil, fmt.Errorf("decode skipped: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT result FROM triples WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("load triples: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		tr := &network.TripleResult{}
		if err := json.Unmarshal([]byte(body), tr); err != nil {
			return nil, fmt.Errorf("decode triple: %w", err)
		}
		run.Result.Triples[tr.Key] = tr
	}
	return run, rows.Err()
}

// WellHistory lists every stored triple that selected the named well.
func (s *Store) WellHistory(ctx context.Context, name string) ([]Selection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT w.run_id, w.key, w.name, w.role, w.survey_year, w.research_time
		 FROM selected_wells w JOIN runs r ON r.id = w.run_id
		 WHERE w.name = ?
		 ORDER BY r.created_at, w.key`, name)
	if err != nil {
		return nil, fmt.Errorf("well history: %w", err)
	}
	defer rows.Close()

	var out []Selection
	for rows.Next() {
		var (
			sel Selection
			key string
		)
		if err := rows.Scan(&sel.RunID, &key, &sel.Name, &sel.Role, &sel.SurveyYear, &sel.ResearchTime); err != nil {
			return nil, err
		}
		if err := sel.Key.UnmarshalText([]byte(key)); err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and everything stored under it.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
