// This file implements an SQLite-backed session store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/LikhithKalle/FARMA-Project/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore stores sessions in a single SQLite file.
type SQLiteStore struct {
	db       *sql.DB
	ttl      time.Duration
	claimTTL time.Duration
	now      func() time.Time
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	cfg := applyOptions(opts)
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		db.Close()
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully", "path", dsn)

	return &SQLiteStore{db: db, ttl: cfg.SessionTTL, claimTTL: cfg.ClaimTTL, now: cfg.Now}, nil
}

// Get loads a session, returning nil when it is unknown or expired.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT session_id, state, language, profile, history, created_at, updated_at
		FROM chat_sessions WHERE session_id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore Get failed", "error", err, "sessionID", id)
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if expired(sess.UpdatedAt, s.now(), s.ttl) {
		slog.Debug("SQLiteStore Get: session expired", "sessionID", id)
		return nil, nil
	}
	return sess, nil
}

// Create writes a fresh START session under id, replacing any previous row.
func (s *SQLiteStore) Create(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, models.ErrEmptyChannelKey
	}
	sess := models.NewSession(id, s.now().UTC())
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	slog.Debug("SQLiteStore Create succeeded", "sessionID", id)
	return sess, nil
}

// Save upserts the session row.
func (s *SQLiteStore) Save(ctx context.Context, session *models.Session) error {
	if err := validateSession(session); err != nil {
		return err
	}
	profileJSON, historyJSON, err := encodeSession(session)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO chat_sessions
		(session_id, state, language, profile, history, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, string(session.State), session.Language, profileJSON, historyJSON,
		session.CreatedAt.UTC(), session.UpdatedAt.UTC())
	if err != nil {
		slog.Error("SQLiteStore Save failed", "error", err, "sessionID", session.ID)
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	slog.Debug("SQLiteStore Save succeeded", "sessionID", session.ID, "state", session.State)
	return nil
}

// DeleteExpired removes sessions last updated before idleBefore.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, idleBefore time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE updated_at < ?`, idleBefore.UTC())
	if err != nil {
		slog.Error("SQLiteStore DeleteExpired failed", "error", err)
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return int(n), nil
}

// Count returns the number of stored sessions.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

// RecordInbound inserts a dedup record or takes over a stale unprocessed
// one, returning false for a duplicate.
func (s *SQLiteStore) RecordInbound(ctx context.Context, messageID, sessionKey string) (bool, error) {
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO inbound_dedup (message_id, session_key, received_at) VALUES (?, ?, ?)
		 ON CONFLICT(message_id) DO UPDATE SET received_at = excluded.received_at, session_key = excluded.session_key
		 WHERE inbound_dedup.processed_at IS NULL AND inbound_dedup.received_at < ?`,
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
func (s *SQLiteStore) MarkProcessed(ctx context.Context, messageID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE inbound_dedup SET processed_at = ? WHERE message_id = ?`,
		s.now().UTC(), messageID,
	)
	if err != nil {
		return fmt.Errorf("mark processed failed: %w", err)
	}
	return nil
}

// PruneInbound deletes dedup records received before the cutoff.
func (s *SQLiteStore) PruneInbound(ctx context.Context, receivedBefore time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inbound_dedup WHERE received_at < ?`, receivedBefore.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune inbound failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected check failed: %w", err)
	}
	return int(n), nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
