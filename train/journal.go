package train

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/naimul214/Word-Prediction-API/params"
)

// Journal records every training run and its per-epoch metrics in sqlite.
type Journal struct {
	db *sql.DB
}

type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     string
	ModelPath  string
	Epochs     int
	LastLoss   sql.NullFloat64
	LastValAcc sql.NullFloat64
}

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs(
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			finished_at INTEGER,
			status TEXT NOT NULL,
			config_json TEXT NOT NULL,
			model_path TEXT NOT NULL,
			error TEXT
		)`)
	if err == nil {
		_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS epochs(
			run_id TEXT NOT NULL REFERENCES runs(id),
			epoch INTEGER NOT NULL,
			loss REAL NOT NULL,
			accuracy REAL NOT NULL,
			val_loss REAL NOT NULL,
			val_accuracy REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			PRIMARY KEY(run_id, epoch)
		)`)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// StartRun inserts a new running run and returns its id.
func (j *Journal) StartRun(cfg params.TrainingConfig) (string, error) {
	id := uuid.NewString()
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	_, err = j.db.Exec(
		"INSERT INTO runs(id, started_at, status, config_json, model_path) VALUES(?,?,?,?,?)",
		id, time.Now().UnixMilli(), StatusRunning, string(cfgJSON), cfg.ModelPath)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

func (j *Journal) RecordEpoch(runID string, m EpochMetrics) error {
	_, err := j.db.Exec(
		"INSERT INTO epochs(run_id, epoch, loss, accuracy, val_loss, val_accuracy, duration_ms) VALUES(?,?,?,?,?,?,?)",
		runID, m.Epoch, m.Loss, m.Accuracy, m.ValLoss, m.ValAccuracy, m.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record epoch %d: %w", m.Epoch, err)
	}
	return nil
}

// FinishRun marks the run completed, or failed when runErr is not nil.
func (j *Journal) FinishRun(runID string, runErr error) error {
	status, msg := StatusCompleted, sql.NullString{}
	if runErr != nil {
		status = StatusFailed
		msg = sql.NullString{String: runErr.Error(), Valid: true}
	}
	_, err := j.db.Exec("UPDATE runs SET finished_at = ?, status = ?, error = ? WHERE id = ?",
		time.Now().UnixMilli(), status, msg, runID)
	return err
}

// RecentRuns lists the newest runs first with their last epoch metrics.
func (j *Journal) RecentRuns(limit int) ([]Run, error) {
	rows, err := j.db.Query(`
		SELECT r.id, r.started_at, r.finished_at, r.status, r.model_path,
			(SELECT COUNT(*) FROM epochs e WHERE e.run_id = r.id),
			(SELECT loss FROM epochs e WHERE e.run_id = r.id ORDER BY epoch DESC LIMIT 1),
			(SELECT val_accuracy FROM epochs e WHERE e.run_id = r.id ORDER BY epoch DESC LIMIT 1)
		FROM runs r ORDER BY r.started_at DESC, r.rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var (
			r        Run
			started  int64
			finished sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Status, &r.ModelPath,
			&r.Epochs, &r.LastLoss, &r.LastValAcc); err != nil {
			return nil, err
		}
		r.StartedAt = time.UnixMilli(started)
		if finished.Valid {
			r.FinishedAt = sql.NullTime{Time: time.UnixMilli(finished.Int64), Valid: true}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// EpochHistory returns the recorded epochs of one run in order.
func (j *Journal) EpochHistory(runID string) ([]EpochMetrics, error) {
	rows, err := j.db.Query(
		"SELECT epoch, loss, accuracy, val_loss, val_accuracy, duration_ms FROM epochs WHERE run_id = ? ORDER BY epoch",
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EpochMetrics
	for rows.Next() {
		var (
			m  EpochMetrics
			ms int64
		)
		if err := rows.Scan(&m.Epoch, &m.Loss, &m.Accuracy, &m.ValLoss, &m.ValAccuracy, &ms); err != nil {
			return nil, err
		}
		m.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, m)
	}
	return out, rows.Err()
}
