package ledger

import "sync"

// accountLocks serializes balance mutation per external user identity.
// Transfers need two locks; lockPair acquires them in ascending identity
// order so concurrent opposite-direction transfers cannot deadlock.
type accountLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *accountLocks) get(userID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	return m
}

func (l *accountLocks) lock(userID int64) func() {
	m := l.get(userID)
	m.Lock()
	return m.Unlock
}

func (l *accountLocks) lockPair(a, b int64) func() {
	if a > b {
		a, b = b, a
	}
	first, second := l.get(a), l.get(b)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}
