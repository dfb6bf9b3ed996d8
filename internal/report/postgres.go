package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ddlSessions and ddlWordResults define the persistence schema. Wrong
// attempts are stored as a text array; they are only ever read back whole.
const ddlSessions = `
CREATE TABLE IF NOT EXISTS sessions (
    id             BIGSERIAL    PRIMARY KEY,
    started_at     TIMESTAMPTZ  NOT NULL,
    duration_ns    BIGINT       NOT NULL DEFAULT 0,
    locale         TEXT         NOT NULL DEFAULT '',
    total          INT          NOT NULL,
    correct        INT          NOT NULL,
    hesitated      INT          NOT NULL,
    skipped        INT          NOT NULL,
    missed         INT          NOT NULL,
    prompted       INT          NOT NULL,
    accuracy       DOUBLE PRECISION NOT NULL,
    delivery_score DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_started_at
    ON sessions (started_at);
`

const ddlWordResults = `
CREATE TABLE IF NOT EXISTS word_results (
    session_id       BIGINT  NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
    idx              INT     NOT NULL,
    word             TEXT    NOT NULL,
    status           TEXT    NOT NULL,
    time_to_speak_ns BIGINT  NOT NULL DEFAULT 0,
    prompted         BOOLEAN NOT NULL DEFAULT FALSE,
    wrong_attempts   TEXT[]  NOT NULL DEFAULT '{}',
    PRIMARY KEY (session_id, idx)
);
`

// Store persists session reports to PostgreSQL. All methods are safe for
// concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store, establishes a connection pool to the PostgreSQL
// database at dsn, and runs [Migrate] to ensure the required tables exist.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("report store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("report store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("report store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("report store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Migrate ensures all report tables and indexes exist. It is idempotent
// (CREATE TABLE IF NOT EXISTS) and safe to run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, ddl := range []string{ddlSessions, ddlWordResults} {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("report migrate: %w", err)
		}
	}
	return nil
}

// Ping probes the database connection. Used as a readiness check.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all connections held by the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Save writes r and its per-word results in a single transaction and returns
// the new session row's ID.
func (s *Store) Save(ctx context.Context, r Report) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("report store: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertSession = `
		INSERT INTO sessions
		    (started_at, duration_ns, locale, total, correct, hesitated, skipped, missed, prompted, accuracy, delivery_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	var id int64
	err = tx.QueryRow(ctx, insertSession,
		r.StartedAt,
		r.Duration.Nanoseconds(),
		r.Locale,
		r.Summary.Total,
		r.Summary.Correct,
		r.Summary.Hesitated,
		r.Summary.Skipped,
		r.Summary.Missed,
		r.Summary.Prompted,
		r.Summary.Accuracy,
		r.Summary.DeliveryScore,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("report store: insert session: %w", err)
	}

	rows := make([][]any, 0, len(r.Words))
	for _, w := range r.Words {
		attempts := w.WrongAttempts
		if attempts == nil {
			attempts = []string{}
		}
		rows = append(rows, []any{
			id, w.Index, w.Word, string(w.Status), w.TimeToSpeak.Nanoseconds(), w.Prompted, attempts,
		})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"word_results"},
		[]string{"session_id", "idx", "word", "status", "time_to_speak_ns", "prompted", "wrong_attempts"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("report store: copy word results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("report store: commit: %w", err)
	}
	return id, nil
}

// SessionRow is one persisted session summary as returned by [Store.Recent].
type SessionRow struct {
	ID        int64
	StartedAt time.Time
	Duration  time.Duration
	Locale    string
	Summary   Summary
}

// Recent returns up to limit persisted sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]SessionRow, error) {
	const q = `
		SELECT id, started_at, duration_ns, locale, total, correct, hesitated, skipped, missed, prompted, accuracy, delivery_score
		FROM   sessions
		ORDER  BY started_at DESC
		LIMIT  $1`

	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("report store: recent: %w", err)
	}

	sessions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SessionRow, error) {
		var (
			sr         SessionRow
			durationNS int64
		)
		if err := row.Scan(
			&sr.ID,
			&sr.StartedAt,
			&durationNS,
			&sr.Locale,
			&sr.Summary.Total,
			&sr.Summary.Correct,
			&sr.Summary.Hesitated,
			&sr.Summary.Skipped,
			&sr.Summary.Missed,
			&sr.Summary.Prompted,
			&sr.Summary.Accuracy,
			&sr.Summary.DeliveryScore,
		); err != nil {
			return SessionRow{}, err
		}
		sr.Duration = time.Duration(durationNS)
		return sr, nil
	})
	if err != nil {
		return nil, fmt.Errorf("report store: scan rows: %w", err)
	}
	return sessions, nil
}
