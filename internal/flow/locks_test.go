package flow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LikhithKalle/FARMA-Project/internal/geo"
	"github.com/LikhithKalle/FARMA-Project/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (l *sessionLocks) inFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func TestSessionLocks_SameIDWaits(t *testing.T) {
	var l sessionLocks
	unlock := l.lock("a")

	acquired := make(chan struct{})
	go func() {
		release := l.lock("a")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock on the same id acquired while held")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the lock")
	}
	assert.Eventually(t, func() bool { return l.inFlight() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSessionLocks_DifferentIDsDoNotWait(t *testing.T) {
	var l sessionLocks
	unlock := l.lock("a")
	defer unlock()

	done := make(chan struct{})
	go func() {
		l.lock("b")()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another id blocked")
	}
	assert.Equal(t, 1, l.inFlight())
}

type blockingLookup struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingLookup) ReverseGeocode(context.Context, float64, float64) *geo.Location {
	return nil
}

func (b *blockingLookup) SearchPlace(ctx context.Context, query string) *geo.PlaceMatch {
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func TestProcess_SlowLookupDoesNotBlockOtherSessions(t *testing.T) {
	lookup := &blockingLookup{entered: make(chan struct{}), release: make(chan struct{})}
	m, st := newMachine(t, lookup, nil)

	slow := seed(t, st, models.StateAskLocation, models.FarmerProfile{})
	other := seed(t, st, models.StateAskLocation, models.FarmerProfile{})

	slowDone := make(chan error, 1)
	go func() {
		_, err := m.Process(context.Background(), models.ChatRequest{SessionID: slow, Message: "Guntur"})
		slowDone <- err
	}()
	<-lookup.entered

	otherDone := make(chan models.ChatResponse, 1)
	go func() {
		resp, err := m.Process(context.Background(), models.ChatRequest{SessionID: other, Message: "Search Manually"})
		assert.NoError(t, err)
		otherDone <- resp
	}()

	select {
	case resp := <-otherDone:
		assert.Equal(t, models.StateSelectState, resp.State)
	case <-time.After(time.Second):
		t.Fatal("turn for another session waited on a slow lookup")
	}

	close(lookup.release)
	require.NoError(t, <-slowDone)
	assert.Equal(t, models.StateAskSoil, loadSession(t, st, slow).State)
	assert.Equal(t, 0, m.locks.inFlight())
}
