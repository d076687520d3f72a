package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LikhithKalle/FARMA-Project/internal/models"
)

// InMemoryStore keeps sessions in a mutex-guarded map. Sessions are
// deep-copied on the way in and out so callers never share state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	inbound  map[string]DedupRecord
	ttl      time.Duration
	claimTTL time.Duration
	now      func() time.Time
}

// Compile-time check that InMemoryStore implements Store.
var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	cfg := applyOptions(opts)
	slog.Debug("NewInMemoryStore: creating in-memory store", "ttl", cfg.SessionTTL)
	return &InMemoryStore{
		sessions: make(map[string]*models.Session),
		inbound:  make(map[string]DedupRecord),
		ttl:      cfg.SessionTTL,
		claimTTL: cfg.ClaimTTL,
		now:      cfg.Now,
	}
}

// Get returns a copy of the session, or nil when it is unknown or expired.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if expired(sess.UpdatedAt, s.now(), s.ttl) {
		slog.Debug("InMemoryStore.Get: session expired", "sessionID", id)
		return nil, nil
	}
	return sess.Clone(), nil
}

// Create stores a fresh START session under id, replacing any previous one.
func (s *InMemoryStore) Create(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, models.ErrEmptyChannelKey
	}
	sess := models.NewSession(id, s.now())
	s.mu.Lock()
	s.sessions[id] = sess.Clone()
	s.mu.Unlock()
	slog.Debug("InMemoryStore.Create: session created", "sessionID", id)
	return sess, nil
}

// Save replaces the stored copy of the session.
func (s *InMemoryStore) Save(ctx context.Context, session *models.Session) error {
	if err := validateSession(session); err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[session.ID] = session.Clone()
	s.mu.Unlock()
	return nil
}

// DeleteExpired removes sessions last updated before idleBefore.
func (s *InMemoryStore) DeleteExpired(ctx context.Context, idleBefore time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(idleBefore) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Count returns the number of stored sessions.
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// RecordInbound claims messageID. It returns false if the message was
// processed or is still claimed.
func (s *InMemoryStore) RecordInbound(ctx context.Context, messageID, sessionKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if rec, ok := s.inbound[messageID]; ok {
		if rec.ProcessedAt != nil || !rec.ReceivedAt.Before(now.Add(-s.claimTTL)) {
			return false, nil
		}
		slog.Debug("InMemoryStore.RecordInbound: taking over stale claim", "messageID", messageID, "receivedAt", rec.ReceivedAt)
	}
	s.inbound[messageID] = DedupRecord{MessageID: messageID, SessionKey: sessionKey, ReceivedAt: now}
	return true, nil
}

// MarkProcessed stamps the processed time on a recorded message.
func (s *InMemoryStore) MarkProcessed(ctx context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.inbound[messageID]
	if !ok {
		return nil
	}
	now := s.now()
	rec.ProcessedAt = &now
	s.inbound[messageID] = rec
	return nil
}

// PruneInbound forgets messages received before the cutoff.
func (s *InMemoryStore) PruneInbound(ctx context.Context, receivedBefore time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, rec := range s.inbound {
		if rec.ReceivedAt.Before(receivedBefore) {
			delete(s.inbound, id)
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error {
	return nil
}
