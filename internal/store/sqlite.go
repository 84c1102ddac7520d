package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"powersched/internal/sched"

	_ "modernc.org/sqlite"
)

// Run is a stored driver run.
type Run struct {
	ID          string
	Driver      string
	Energy      float64
	Assignments int
	Warnings    int
	CreatedAt   time.Time
}

// SQLiteStore persists schedules in SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// One connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// SaveRun stores the schedule with all its assignments in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, schedule *sched.Schedule) (*Run, error) {
	var warnings int
	for _, event := range schedule.Events {
		if event.Kind.Warning() {
			warnings++
		}
	}

	run := Run{
		ID:          uuid.NewString(),
		Driver:      schedule.Driver,
		Energy:      schedule.Energy,
		Assignments: len(schedule.Assignments),
		Warnings:    warnings,
		CreatedAt:   time.Now().UTC(),
	}

	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, driver, energy, assignments, warnings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Driver, run.Energy, run.Assignments, run.Warnings,
		run.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	for seq, assignment := range schedule.Assignments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assignments (run_id, seq, task_id, server_id, start_time, end_time)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, seq, int(assignment.TaskID), int(assignment.ServerID),
			assignment.Start, assignment.End,
		); err != nil {
			return nil, fmt.Errorf("insert assignment %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &run, nil
}

// ListRuns returns stored runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs")

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, driver, energy, assignments, warnings, created_at
		 FROM runs ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var result []Run

	for rows.Next() {
		var (
			run       Run
			createdAt string
		)

		if err := rows.Scan(&run.ID, &run.Driver, &run.Energy, &run.Assignments, &run.Warnings, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}

		result = append(result, run)
	}

	return result, rows.Err()
}

// GetAssignments returns the stored schedule of a run in its original order.
func (s *SQLiteStore) GetAssignments(ctx context.Context, runID string) ([]sched.Assignment, error) {
	s.logger.Debug("sql", "op", "select", "table", "assignments", "run_id", runID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT task_id, server_id, start_time, end_time
		 FROM assignments WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("get assignments %s: %w", runID, err)
	}
	defer rows.Close()

	var result []sched.Assignment

	for rows.Next() {
		var (
			assignment       sched.Assignment
			taskID, serverID int
		)

		if err := rows.Scan(&taskID, &serverID, &assignment.Start, &assignment.End); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}

		assignment.TaskID = sched.TaskID(taskID)
		assignment.ServerID = sched.ServerID(serverID)

		result = append(result, assignment)
	}

	return result, rows.Err()
}
