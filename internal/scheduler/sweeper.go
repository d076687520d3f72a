package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LikhithKalle/FARMA-Project/internal/metrics"
	"github.com/LikhithKalle/FARMA-Project/internal/store"
)

// Sweeper defaults
const (
	DefaultSweepInterval = time.Minute
	// DefaultDedupRetention bounds how long inbound message ids are remembered.
	DefaultDedupRetention = 24 * time.Hour
	sweepTimeout          = 30 * time.Second
)

// Sweeper evicts idle sessions and old inbound dedup records.
type Sweeper struct {
	store          store.Store
	ttl            time.Duration
	dedupRetention time.Duration
	now            func() time.Time
}

// NewSweeper creates a sweeper for st. Non-positive durations fall back to defaults.
func NewSweeper(st store.Store, ttl, dedupRetention time.Duration) *Sweeper {
	if ttl <= 0 {
		ttl = store.DefaultSessionTTL
	}
	if dedupRetention <= 0 {
		dedupRetention = DefaultDedupRetention
	}
	return &Sweeper{store: st, ttl: ttl, dedupRetention: dedupRetention, now: time.Now}
}

// Sweep runs one eviction pass and refreshes the active-session gauge.
func (w *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := w.now()
	evicted, err := w.store.DeleteExpired(ctx, now.Add(-w.ttl))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	if evicted > 0 {
		metrics.SessionsEvicted.Add(float64(evicted))
		slog.Info("Sweeper.Sweep: evicted idle sessions", "count", evicted)
	}

	if pruned, err := w.store.PruneInbound(ctx, now.Add(-w.dedupRetention)); err != nil {
		slog.Warn("Sweeper.Sweep: prune inbound dedup failed", "error", err)
	} else if pruned > 0 {
		slog.Debug("Sweeper.Sweep: pruned inbound dedup records", "count", pruned)
	}

	if active, err := w.store.Count(ctx); err == nil {
		metrics.SessionsActive.Set(float64(active))
	}
	return evicted, nil
}

// Schedule registers the sweeper on s to run every interval.
func (w *Sweeper) Schedule(s *Scheduler, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	expr := fmt.Sprintf("@every %s", interval)
	if err := s.AddJob(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := w.Sweep(ctx); err != nil {
			slog.Error("Sweeper: sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule sweeper: %w", err)
	}
	slog.Debug("Sweeper.Schedule: sweeper scheduled", "interval", interval, "ttl", w.ttl)
	return nil
}
