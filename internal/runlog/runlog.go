package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Status is the lifecycle state of a recorded run.
type Status string

const (
	// StatusRunning marks a run that has started but not finished.
	StatusRunning Status = "running"
	// StatusDone marks a run that completed every phase.
	StatusDone Status = "done"
	// StatusError marks a run that ended with a propagated error.
	StatusError Status = "error"
)

// Run is one recorded simulation run.
type Run struct {
	ID            int64      `json:"id"`
	Status        Status     `json:"status"`
	TotalDays     int        `json:"total_days"`
	DaysCompleted int        `json:"days_completed"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// DayRecord is one completed simulated day within a run.
type DayRecord struct {
	RunID       int64     `json:"run_id"`
	Day         int       `json:"day"`
	ElapsedMS   int64     `json:"elapsed_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// Store records run history in a SQLite database at dir/daysim.db.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open opens (creating if needed) the run log under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run log directory: %w", err)
	}

	dbPath := filepath.Join(dir, "daysim.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// BeginRun records the start of a run and returns its ID.
func (s *Store) BeginRun(ctx context.Context, totalDays int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (status, total_days, days_completed, started_at) VALUES (?, ?, 0, ?)`,
		string(StatusRunning), totalDays, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to record run start: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return id, nil
}

// RecordDay records the completion of one simulated day.
func (s *Store) RecordDay(ctx context.Context, runID int64, day int, elapsed time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_days (run_id, day, elapsed_ms, completed_at) VALUES (?, ?, ?, ?)`,
		runID, day, elapsed.Milliseconds(), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record day %d: %w", day, err)
	}
	return nil
}

// FinishRun records the terminal status of a run.
func (s *Store) FinishRun(ctx context.Context, runID int64, status Status, daysCompleted int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, days_completed = ?, finished_at = ? WHERE id = ?`,
		string(status), daysCompleted, time.Now().UTC().Format(time.RFC3339Nano), runID)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check run update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %d not found", runID)
	}
	return nil
}

// GetRun returns a run by ID, or nil if it does not exist.
func (s *Store) GetRun(ctx context.Context, runID int64) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, total_days, days_completed, started_at, finished_at FROM runs WHERE id = ?`,
		runID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns all recorded runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, total_days, days_completed, started_at, finished_at FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Days returns the recorded day rows for a run in ascending day order.
func (s *Store) Days(ctx context.Context, runID int64) ([]DayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, day, elapsed_ms, completed_at FROM run_days WHERE run_id = ? ORDER BY day ASC`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list days for run %d: %w", runID, err)
	}
	defer rows.Close()

	var days []DayRecord
	for rows.Next() {
		var d DayRecord
		var completedAt string
		if err := rows.Scan(&d.RunID, &d.Day, &d.ElapsedMS, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan day: %w", err)
		}
		d.CompletedAt, _ = time.Parse(time.RFC3339Nano, completedAt)
		days = append(days, d)
	}
	return days, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var status, startedAt string
	var finishedAt sql.NullString

	if err := row.Scan(&run.ID, &status, &run.TotalDays, &run.DaysCompleted, &startedAt, &finishedAt); err != nil {
		return nil, err
	}

	run.Status = Status(status)
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	if finishedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err == nil {
			run.FinishedAt = &t
		}
	}
	return &run, nil
}
