// File: services/assistant/turnlock.go
package assistant

import "sync"

// turnLocks serializes turns per session. A session processes exactly one
// message at a time; a second message arriving mid-turn is refused rather
// than queued, so the customer never races their own booking.
type turnLocks struct {
	locks sync.Map // sessionID -> *sync.Mutex
}

func (t *turnLocks) tryAcquire(sessionID string) (release func(), ok bool) {
	v, _ := t.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	if !mu.TryLock() {
		return nil, false
	}
	return mu.Unlock, true
}

// forget drops a session's lock entry so closed sessions do not accumulate
// mutexes for the life of the process.
func (t *turnLocks) forget(sessionID string) {
	t.locks.Delete(sessionID)
}
