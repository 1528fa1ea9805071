package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DefaultHistoryLimit is how many runs ListRuns returns when no limit is given
const DefaultHistoryLimit = 20

// ErrRunNotFound is returned by GetRun for an unknown id
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded deployment
type Run struct {
	ID         string
	StartedAt  time.Time
	Status     string
	Duration   time.Duration
	Creates    int
	Updates    int
	Deletes    int
	ReportPath string
	TargetURL  string
	Error      string
}

// Changes returns the number of planned operations
func (r *Run) Changes() int {
	return r.Creates + r.Updates + r.Deletes
}

// SaveRun inserts or replaces a run record
func (s *Store) SaveRun(r *Run) error {
	if r.ID == "" {
		return fmt.Errorf("run id is required")
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO runs
			(id, started_at, status, duration_ms, creates, updates, deletes, report_path, target_url, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC().Format(time.RFC3339Nano), r.Status, r.Duration.Milliseconds(),
		r.Creates, r.Updates, r.Deletes, r.ReportPath, r.TargetURL, r.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", r.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := s.db.Query(`
		SELECT id, started_at, status, duration_ms, creates, updates, deletes,
			COALESCE(report_path, ''), COALESCE(target_url, ''), COALESCE(error, '')
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given id
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, status, duration_ms, creates, updates, deletes,
			COALESCE(report_path, ''), COALESCE(target_url, ''), COALESCE(error, '')
		FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r          Run
		startedAt  string
		durationMs int64
	)
	err := sc.Scan(&r.ID, &startedAt, &r.Status, &durationMs,
		&r.Creates, &r.Updates, &r.Deletes, &r.ReportPath, &r.TargetURL, &r.Error)
	if err != nil {
		return nil, err
	}
	r.StartedAt = parseTimestamp(startedAt)
	r.Duration = time.Duration(durationMs) * time.Millisecond
	return &r, nil
}
