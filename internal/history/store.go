// Package history persists gate runs in a SQLite database so past verdicts
// can be listed and inspected.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"qgate/internal/policy"
	"qgate/internal/slogutil"
)

const schemaVersion = 1

// ErrNotFound is returned by Get when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// Run is one recorded gate run.
type Run struct {
	ID          string          `json:"id"`
	RecordedAt  time.Time       `json:"recordedAt"`
	Status      policy.Status   `json:"status"`
	Summary     string          `json:"summary"`
	ReasonCount int             `json:"reasonCount"`
	Report      json.RawMessage `json:"report,omitempty"`
}

// Store is the run history database.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
	now    func() time.Time
	newID  func() string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDFunc overrides run id generation.
func WithIDFunc(f func() string) Option {
	return func(s *Store) {
		if f != nil {
			s.newID = f
		}
	}
}

// Open opens or creates the history database at dbPath.
func Open(dbPath string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{
		conn:   conn,
		logger: slogutil.NewDiscardLogger(),
		dbPath: dbPath,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			recorded_at TEXT NOT NULL,
			status TEXT NOT NULL,
			summary TEXT NOT NULL,
			reason_count INTEGER NOT NULL DEFAULT 0,
			report BLOB
		);
		CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs(recorded_at DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return err
	}
	_, err := s.conn.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Record stores a verdict together with the full report it came from.
func (s *Store) Record(ctx context.Context, result *policy.EvaluationResult, report any) (*Run, error) {
	if result == nil {
		return nil, errors.New("record: nil evaluation result")
	}
	blob, err := compressJSON(report)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:          s.newID(),
		RecordedAt:  s.now().UTC(),
		Status:      result.Status,
		Summary:     result.Summary,
		ReasonCount: len(result.Reasons),
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO runs (id, recorded_at, status, summary, reason_count, report)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.RecordedAt.Format(time.RFC3339Nano),
		string(run.Status),
		run.Summary,
		run.ReasonCount,
		blob,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug("Recorded run", "id", run.ID, "status", run.Status, "bytes", len(blob))
	return run, nil
}

// List returns up to limit runs, newest first, without their reports.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, recorded_at, status, summary, reason_count
		FROM runs
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := []Run{}
	for rows.Next() {
		var (
			run        Run
			recordedAt string
			status     string
		)
		if err := rows.Scan(&run.ID, &recordedAt, &status, &run.Summary, &run.ReasonCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Status = policy.Status(status)
		run.RecordedAt = parseTime(recordedAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns a run with its decompressed report.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var (
		run        Run
		recordedAt string
		status     string
		blob       []byte
	)
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, recorded_at, status, summary, reason_count, report
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &recordedAt, &status, &run.Summary, &run.ReasonCount, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Status = policy.Status(status)
	run.RecordedAt = parseTime(recordedAt)
	if len(blob) > 0 {
		report, err := decompress(blob)
		if err != nil {
			return nil, err
		}
		run.Report = report
	}
	return &run, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
