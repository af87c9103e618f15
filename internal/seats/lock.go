package seats

import "sync"

// LockTable serializes mutations on individual seats. Every code path that
// flips a seat between FREE and RESERVED must hold the seat's lock for the
// whole read-check-write sequence, so two requests racing for the same seat
// are decided strictly one after the other.
type LockTable struct {
	mu    sync.Mutex
	locks map[int64]*seatLock
}

type seatLock struct {
	mu   sync.Mutex
	refs int
}

func NewLockTable() *LockTable {
	return &LockTable{locks: make(map[int64]*seatLock)}
}

// Acquire blocks until the caller holds the exclusive lock for seatID and
// returns the release function. Lock entries are refcounted and removed once
// the last holder releases, so the table does not grow with the seat count.
func (t *LockTable) Acquire(seatID int64) func() {
	t.mu.Lock()
	l, ok := t.locks[seatID]
	if !ok {
		l = &seatLock{}
		t.locks[seatID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			t.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(t.locks, seatID)
			}
			t.mu.Unlock()
		})
	}
}
