package flow

import "sync"

// sessionLock is a mutex shared by the turns waiting on one session id.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks serializes work per session id. An entry lives only while a
// turn holds or waits for it, so the map stays as small as the set of
// sessions in flight.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

// lock acquires the lock for id and returns its unlock function.
func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
