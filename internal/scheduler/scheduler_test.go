package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LikhithKalle/FARMA-Project/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerAddJob(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	require.NoError(t, s.AddJob("* * * * *", func() {}))
	require.NoError(t, s.AddJob("@every 1m", func() {}))
	assert.Equal(t, 2, s.Len())

	assert.Error(t, s.AddJob("not a cron", func() {}))
}

func TestSchedulerRunsEveryJob(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	ran := make(chan struct{}, 1)
	require.NoError(t, s.AddJob("@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestSweeper_EvictsIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	st := store.NewInMemoryStore(store.WithClock(clock))

	_, err := st.Create(ctx, "old")
	require.NoError(t, err)
	now = now.Add(45 * time.Minute)
	_, err = st.Create(ctx, "fresh")
	require.NoError(t, err)

	w := NewSweeper(st, 30*time.Minute, 0)
	w.now = clock

	evicted, err := w.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSweeper_PrunesDedupRecords(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	st := store.NewInMemoryStore(store.WithClock(clock))

	_, err := st.RecordInbound(ctx, "SM1", "sms:+15550001")
	require.NoError(t, err)
	now = now.Add(2 * time.Hour)

	w := NewSweeper(st, 0, time.Hour)
	w.now = clock
	_, err = w.Sweep(ctx)
	require.NoError(t, err)

	fresh, err := st.RecordInbound(ctx, "SM1", "sms:+15550001")
	require.NoError(t, err)
	assert.True(t, fresh)
}

type failingStore struct{ *store.InMemoryStore }

func (failingStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, errors.New("disk full")
}

func TestSweeper_PropagatesStoreError(t *testing.T) {
	w := NewSweeper(failingStore{store.NewInMemoryStore()}, time.Minute, time.Hour)
	_, err := w.Sweep(context.Background())
	assert.Error(t, err)
}

func TestSweeper_Schedule(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	w := NewSweeper(store.NewInMemoryStore(), 0, 0)
	require.NoError(t, w.Schedule(s, 0))
	assert.Equal(t, 1, s.Len())
}
