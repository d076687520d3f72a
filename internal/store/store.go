// Package store provides session storage backends for FARMA.
//
// The in-memory store is the default; SQLite and PostgreSQL backends keep
// conversations across restarts. All backends treat sessions idle longer than
// the configured TTL as absent.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/LikhithKalle/FARMA-Project/internal/models"
)

// DefaultSessionTTL is how long a session may stay idle before it is evicted.
const DefaultSessionTTL = 30 * time.Minute

// DefaultInboundClaimTTL is how long a recorded but unprocessed inbound
// message stays claimed. After it, a redelivery is processed again.
const DefaultInboundClaimTTL = 2 * time.Minute

// Driver names returned by DetectDSNType.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// SessionStore persists conversation sessions.
// Get returns (nil, nil) for unknown or expired sessions.
type SessionStore interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	DeleteExpired(ctx context.Context, idleBefore time.Time) (int, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Store is a SessionStore that also deduplicates inbound channel messages.
type Store interface {
	SessionStore
	DedupRepo
}

// Opts holds configuration options for stores.
type Opts struct {
	DSN        string
	Driver     string
	SessionTTL time.Duration
	ClaimTTL   time.Duration
	Now        func() time.Time
}

// Option defines a configuration option for stores.
type Option func(*Opts)

// WithSQLiteDSN selects the SQLite backend at the given file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
		o.Driver = DriverSQLite
	}
}

// WithPostgresDSN selects the PostgreSQL backend.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
		o.Driver = DriverPostgres
	}
}

// WithSessionTTL sets the idle expiry. Non-positive values are ignored.
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *Opts) {
		if ttl > 0 {
			o.SessionTTL = ttl
		}
	}
}

// WithInboundClaimTTL sets how long an unprocessed inbound message blocks
// redeliveries. Non-positive values are ignored.
func WithInboundClaimTTL(ttl time.Duration) Option {
	return func(o *Opts) {
		if ttl > 0 {
			o.ClaimTTL = ttl
		}
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) {
		if now != nil {
			o.Now = now
		}
	}
}

func applyOptions(opts []Option) Opts {
	cfg := Opts{SessionTTL: DefaultSessionTTL, ClaimTTL: DefaultInboundClaimTTL, Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// DetectDSNType returns DriverPostgres for postgres URLs and key/value DSNs,
// DriverSQLite for everything else (file paths).
func DetectDSNType(dsn string) string {
	d := strings.TrimSpace(dsn)
	if strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://") {
		return DriverPostgres
	}
	if strings.Contains(d, "host=") || strings.Contains(d, "dbname=") || strings.Contains(d, "user=") {
		return DriverPostgres
	}
	return DriverSQLite
}

// New opens the backend selected by the options, or an in-memory store when
// no DSN is configured.
func New(opts ...Option) (Store, error) {
	cfg := applyOptions(opts)
	switch {
	case cfg.DSN == "":
		return NewInMemoryStore(opts...), nil
	case cfg.Driver == DriverPostgres:
		return NewPostgresStore(opts...)
	default:
		return NewSQLiteStore(opts...)
	}
}

// expired reports whether a session last touched at updatedAt is past ttl.
func expired(updatedAt, now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(updatedAt) > ttl
}
