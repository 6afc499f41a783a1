// Package journal records the history of kiln invocations in SQLite.
package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// MemoryPath opens a journal that lives only as long as the Store.
const MemoryPath = ":memory:"

var _ ports.Journal = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS invocations (
	id          TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER,
	total       INTEGER NOT NULL DEFAULT 0,
	succeeded   INTEGER NOT NULL DEFAULT 0,
	cached      INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	errors      INTEGER NOT NULL DEFAULT 0,
	warnings    INTEGER NOT NULL DEFAULT 0,
	duration    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_invocations_started ON invocations(started_at);

CREATE TABLE IF NOT EXISTS compilation_errors (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	invocation_id TEXT NOT NULL REFERENCES invocations(id) ON DELETE CASCADE,
	file          TEXT NOT NULL,
	stage         TEXT NOT NULL,
	message       TEXT NOT NULL,
	severity      TEXT NOT NULL,
	details       TEXT NOT NULL,
	help          TEXT NOT NULL,
	timestamp     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_errors_invocation ON compilation_errors(invocation_id);
`

// Store implements ports.Journal on SQLite.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	now    func() time.Time
	newID  func() string
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithNowFunc sets the clock used for timestamps.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDFunc sets the invocation id generator.
func WithIDFunc(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// Open opens or creates the journal at path. Use MemoryPath for a
// throwaway journal.
func Open(path string, opts ...Option) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrJournalOpenFailed, err.Error()), "path", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrJournalOpenFailed, err.Error()), "path", path)
	}
	// A single connection serialises writers and keeps MemoryPath on one database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(domain.ErrJournalOpenFailed, err.Error()), "path", path)
	}

	s := &Store{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Begin opens an invocation record.
func (s *Store) Begin(ctx context.Context, mode domain.Mode) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO invocations (id, mode, started_at) VALUES (?, ?, ?)",
		id, string(mode), s.now().UnixNano(),
	)
	if err != nil {
		return "", zerr.Wrap(domain.ErrJournalWriteFailed, err.Error())
	}
	return id, nil
}

// Finish stores the summary and errors of invocation id.
func (s *Store) Finish(ctx context.Context, id string, summary domain.Summary, errs []domain.CompilationError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zerr.Wrap(domain.ErrJournalWriteFailed, err.Error())
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE invocations SET finished_at = ?, total = ?, succeeded = ?, cached = ?,
			failed = ?, errors = ?, warnings = ?, duration = ? WHERE id = ?`,
		s.now().UnixNano(), summary.Total, summary.Succeeded, summary.Cached,
		summary.Failed, summary.Errors, summary.Warnings, int64(summary.Duration), id,
	)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrJournalWriteFailed, err.Error()), "invocation", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return zerr.With(zerr.Wrap(domain.ErrJournalWriteFailed, "unknown invocation"), "invocation", id)
	}

	for _, e := range errs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO compilation_errors
				(invocation_id, file, stage, message, severity, details, help, timestamp)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.File, string(e.Stage), e.Message, string(e.Severity), e.Details, e.Help, e.Timestamp.UnixNano(),
		)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrJournalWriteFailed, err.Error()), "invocation", id)
		}
	}

	if err := tx.Commit(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrJournalWriteFailed, err.Error()), "invocation", id)
	}
	return nil
}

// Recent returns up to n invocations, newest first, with their errors.
func (s *Store) Recent(ctx context.Context, n int) ([]domain.Invocation, error) {
	if n <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, started_at, finished_at, total, succeeded, cached, failed, errors, warnings, duration
			FROM invocations ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrJournalReadFailed, err.Error())
	}
	invocations, err := scanInvocations(rows)
	if err != nil {
		return nil, err
	}

	for i := range invocations {
		errs, err := s.errorsFor(ctx, invocations[i].ID)
		if err != nil {
			return nil, err
		}
		invocations[i].Errors = errs
	}
	return invocations, nil
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func scanInvocations(rows *sql.Rows) ([]domain.Invocation, error) {
	defer func() { _ = rows.Close() }()

	var out []domain.Invocation
	for rows.Next() {
		var (
			inv      domain.Invocation
			mode     string
			started  int64
			finished sql.NullInt64
			duration int64
		)
		err := rows.Scan(&inv.ID, &mode, &started, &finished,
			&inv.Summary.Total, &inv.Summary.Succeeded, &inv.Summary.Cached, &inv.Summary.Failed,
			&inv.Summary.Errors, &inv.Summary.Warnings, &duration)
		if err != nil {
			return nil, zerr.Wrap(domain.ErrJournalReadFailed, err.Error())
		}

		inv.Mode = domain.Mode(mode)
		inv.StartedAt = time.Unix(0, started)
		if finished.Valid {
			inv.FinishedAt = time.Unix(0, finished.Int64)
		}
		inv.Summary.Duration = time.Duration(duration)
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, zerr.Wrap(domain.ErrJournalReadFailed, err.Error())
	}
	return out, nil
}

func (s *Store) errorsFor(ctx context.Context, id string) ([]domain.CompilationError, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file, stage, message, severity, details, help, timestamp
			FROM compilation_errors WHERE invocation_id = ? ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrJournalReadFailed, err.Error()), "invocation", id)
	}
	defer func() { _ = rows.Close() }()

	var errs []domain.CompilationError
	for rows.Next() {
		var (
			e               domain.CompilationError
			stage, severity string
			ts              int64
		)
		if err := rows.Scan(&e.File, &stage, &e.Message, &severity, &e.Details, &e.Help, &ts); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrJournalReadFailed, err.Error()), "invocation", id)
		}
		e.Stage = domain.Stage(stage)
		e.Severity = domain.Severity(severity)
		e.Timestamp = time.Unix(0, ts)
		errs = append(errs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrJournalReadFailed, err.Error()), "invocation", id)
	}
	return errs, nil
}
