package eval

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Tracker records experiment runs, parameters, metrics and text artifacts in
// a local sqlite database. It is the file-backed replacement for a hosted
// experiment-tracking service: everything lives in one tracking.db under the
// given directory.
type Tracker struct {
	db *sql.DB
}

// Run is one active experiment run. Log methods are only valid until End.
type Run struct {
	ID      string
	tracker *Tracker
	ended   bool
}

// NewTracker opens (or creates) the tracking database under basePath.
// ":memory:" yields an ephemeral tracker for tests.
func NewTracker(basePath string) (*Tracker, error) {
	var dbPath string
	if basePath == ":memory:" {
		dbPath = ":memory:"
	} else {
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, fmt.Errorf("create tracking directory: %w", err)
		}
		dbPath = filepath.Join(basePath, "tracking.db")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open tracking database: %w", err)
	}

	t := &Tracker{db: db}
	if err := t.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init tracking schema: %w", err)
	}
	return t, nil
}

// Close releases the database handle.
func (t *Tracker) Close() error {
	return t.db.Close()
}

func (t *Tracker) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS experiments (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		experiment_id INTEGER NOT NULL REFERENCES experiments(id),
		name          TEXT NOT NULL,
		tags          TEXT,
		started_at    TEXT NOT NULL,
		ended_at      TEXT
	);
	CREATE TABLE IF NOT EXISTS params (
		run_id TEXT NOT NULL REFERENCES runs(id),
		key    TEXT NOT NULL,
		value  TEXT NOT NULL,
		PRIMARY KEY (run_id, key)
	);
	CREATE TABLE IF NOT EXISTS metrics (
		run_id    TEXT NOT NULL REFERENCES runs(id),
		key       TEXT NOT NULL,
		value     REAL NOT NULL,
		step      INTEGER,
		logged_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS artifacts (
		run_id  TEXT NOT NULL REFERENCES runs(id),
		name    TEXT NOT NULL,
		content TEXT NOT NULL,
		PRIMARY KEY (run_id, name)
	);`
	_, err := t.db.Exec(schema)
	return err
}

// StartRun opens a run under the named experiment, creating the experiment
// on first use.
func (t *Tracker) StartRun(experiment, runName string, tags map[string]string) (*Run, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	if _, err := t.db.Exec(
		`INSERT OR IGNORE INTO experiments (name, created_at) VALUES (?, ?)`,
		experiment, now); err != nil {
		return nil, fmt.Errorf("create experiment: %w", err)
	}

	var experimentID int64
	if err := t.db.QueryRow(
		`SELECT id FROM experiments WHERE name = ?`, experiment).Scan(&experimentID); err != nil {
		return nil, fmt.Errorf("resolve experiment: %w", err)
	}

	var tagsJSON []byte
	if len(tags) > 0 {
		var err error
		tagsJSON, err = json.Marshal(tags)
		if err != nil {
			return nil, fmt.Errorf("marshal tags: %w", err)
		}
	}

	runID := uuid.NewString()
	if _, err := t.db.Exec(
		`INSERT INTO runs (id, experiment_id, name, tags, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID, experimentID, runName, string(tagsJSON), now); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	return &Run{ID: runID, tracker: t}, nil
}

// End closes the run.
func (r *Run) End() error {
	if r.ended {
		return nil
	}
	r.ended = true
	_, err := r.tracker.db.Exec(
		`UPDATE runs SET ended_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), r.ID)
	return err
}

// LogParams records string parameters on the run.
func (r *Run) LogParams(params map[string]string) error {
	if r.ended {
		return fmt.Errorf("run %s already ended", r.ID)
	}
	for k, v := range params {
		if _, err := r.tracker.db.Exec(
			`INSERT OR REPLACE INTO params (run_id, key, value) VALUES (?, ?, ?)`,
			r.ID, k, v); err != nil {
			return fmt.Errorf("log param %s: %w", k, err)
		}
	}
	return nil
}

// LogMetrics records numeric metrics, optionally at a step for time series.
func (r *Run) LogMetrics(metrics map[string]float64, step *int) error {
	if r.ended {
		return fmt.Errorf("run %s already ended", r.ID)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for k, v := range metrics {
		var stepVal any
		if step != nil {
			stepVal = *step
		}
		if _, err := r.tracker.db.Exec(
			`INSERT INTO metrics (run_id, key, value, step, logged_at) VALUES (?, ?, ?, ?, ?)`,
			r.ID, k, v, stepVal, now); err != nil {
			return fmt.Errorf("log metric %s: %w", k, err)
		}
	}
	return nil
}

// LogArtifact stores a named text artifact on the run.
func (r *Run) LogArtifact(name, content string) error {
	if r.ended {
		return fmt.Errorf("run %s already ended", r.ID)
	}
	_, err := r.tracker.db.Exec(
		`INSERT OR REPLACE INTO artifacts (run_id, name, content) VALUES (?, ?, ?)`,
		r.ID, name, content)
	if err != nil {
		return fmt.Errorf("log artifact %s: %w", name, err)
	}
	return nil
}

// LogEvaluationResult records an EvaluationResult as params + metrics + the
// output artifact in one call.
func (r *Run) LogEvaluationResult(result *EvaluationResult) error {
	if err := r.LogParams(map[string]string{"model_key": result.ModelKey}); err != nil {
		return err
	}
	if err := r.LogMetrics(result.Metrics(), nil); err != nil {
		return err
	}
	return r.LogArtifact("output.md", result.OutputText)
}

// RunMetrics reads back all metrics logged for a run, latest value per key.
func (t *Tracker) RunMetrics(runID string) (map[string]float64, error) {
	rows, err := t.db.Query(
		`SELECT key, value FROM metrics WHERE run_id = ? ORDER BY logged_at`, runID)
	if err != nil {
		return nil, fmt.Errorf("read metrics: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var k string
		var v float64
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
