// This file implements a PostgreSQL-backed session store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/LikhithKalle/FARMA-Project/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore stores sessions in PostgreSQL.
type PostgresStore struct {
	db       *sql.DB
	ttl      time.Duration
	claimTTL time.Duration
	now      func() time.Time
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	cfg := applyOptions(opts)
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		db.Close()
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db, ttl: cfg.SessionTTL, claimTTL: cfg.ClaimTTL, now: cfg.Now}, nil
}

// Get loads a session, returning nil when it is unknown or expired.
func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT session_id, state, language, profile, history, created_at, updated_at
		FROM chat_sessions WHERE session_id = $1`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore Get failed", "error", err, "sessionID", id)
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if expired(sess.UpdatedAt, s.now(), s.ttl) {
		slog.Debug("PostgresStore Get: session expired", "sessionID", id)
		return nil, nil
	}
	return sess, nil
}

// Create writes a fresh START session under id, replacing any previous row.
func (s *PostgresStore) Create(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, models.ErrEmptyChannelKey
	}
	sess := models.NewSession(id, s.now().UTC())
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	slog.Debug("PostgresStore Create succeeded", "sessionID", id)
	return sess, nil
}

// Save upserts the session row.
func (s *PostgresStore) Save(ctx context.Context, session *models.Session) error {
	if err := validateSession(session); err != nil {
		return err
	}
	profileJSON, historyJSON, err := encodeSession(session)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO chat_sessions
		(session_id, state, language, profile, history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO UPDATE SET
			state = EXCLUDED.state,
			language = EXCLUDED.language,
			profile = EXCLUDED.profile,
			history = EXCLUDED.history,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at`,
		session.ID, string(session.State), session.Language, profileJSON, historyJSON,
		session.CreatedAt.UTC(), session.UpdatedAt.UTC())
	if err != nil {
		slog.Error("PostgresStore Save failed", "error", err, "sessionID", session.ID)
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	slog.Debug("PostgresStore Save succeeded", "sessionID", session.ID, "state", session.State)
	return nil
}

// DeleteExpired removes sessions last updated before idleBefore.
func (s *PostgresStore) DeleteExpired(ctx context.Context, idleBefore time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE updated_at < $1`, idleBefore.UTC())
	if err != nil {
		slog.Error("PostgresStore DeleteExpired failed", "error", err)
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return int(n), nil
}

// Count returns the number of stored sessions.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

// RecordInbound inserts a dedup record or takes over a stale unprocessed
// one, returning false for a duplicate.
func (s *PostgresStore) RecordInbound(ctx context.Context, messageID, sessionKey string) (bool, error) {
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO inbound_dedup (message_id, session_key, received_at) VALUES ($1, $2, $3)
		 ON CONFLICT (message_id) DO UPDATE SET received_at = EXCLUDED.received_at, session_key = EXCLUDED.session_key
		 WHERE inbound_dedup.processed_at IS NULL AND inbound_dedup.received_at < $4`,
		messageID, sessionKey, now, now.Add(-s.claimTTL),
	)
	if err != nil {
		return false, fmt.Errorf("record inbound failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("dedup rows affected check failed: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed sets processed_at for a recorded message.
func (s *PostgresStore) MarkProcessed(ctx context.Context, messageID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE inbound_dedup SET processed_at = $1 WHERE message_id = $2`,
		s.now().UTC(), messageID,
	)
	if err != nil {
		return fmt.Errorf("mark processed failed: %w", err)
	}
	return nil
}

// PruneInbound deletes dedup records received before the cutoff.
func (s *PostgresStore) PruneInbound(ctx context.Context, receivedBefore time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inbound_dedup WHERE received_at < $1`, receivedBefore.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune inbound failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected check failed: %w", err)
	}
	return int(n), nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
