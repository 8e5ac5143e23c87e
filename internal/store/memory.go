package store

import (
	"context"
	"sync"
	"time"

	"github.com/punchamoorthee/ledgerbot/internal/domain"
)

// Memory is an in-process implementation of both store contracts, used by
// tests and local development. Returned records are copies; callers never
// see internal pointers.
type Memory struct {
	mu         sync.Mutex
	nextAcctID int64
	nextTxID   int64
	accounts   map[int64]*domain.Account // keyed by store id
	byUser     map[int64]int64           // user id -> store id
	log        map[int64][]domain.Transaction
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[int64]*domain.Account),
		byUser:   make(map[int64]int64),
		log:      make(map[int64][]domain.Transaction),
	}
}

// Atomically runs fn against a scratch copy of the state and commits the
// copy only when fn succeeds, so a failure part-way through leaves the
// store untouched.
func (m *Memory) Atomically(ctx context.Context, fn func(AccountStore, TransactionStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	scratch := &Memory{
		nextAcctID: m.nextAcctID,
		nextTxID:   m.nextTxID,
		accounts:   make(map[int64]*domain.Account, len(m.accounts)),
		byUser:     make(map[int64]int64, len(m.byUser)),
		log:        make(map[int64][]domain.Transaction, len(m.log)),
	}
	for id, account := range m.accounts {
		cp := *account
		scratch.accounts[id] = &cp
	}
	for userID, id := range m.byUser {
		scratch.byUser[userID] = id
	}
	for id, entries := range m.log {
		scratch.log[id] = append([]domain.Transaction(nil), entries...)
	}

	if err := fn(scratch, scratch); err != nil {
		return err
	}

	m.nextAcctID = scratch.nextAcctID
	m.nextTxID = scratch.nextTxID
	m.accounts = scratch.accounts
	m.byUser = scratch.byUser
	m.log = scratch.log
	return nil
}

func (m *Memory) Find(ctx context.Context, userID int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byUser[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *m.accounts[id]
	return &cp, nil
}

func (m *Memory) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (m *Memory) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byUser[account.UserID]; ok {
		cp := *m.accounts[id]
		return &cp, nil
	}
	m.nextAcctID++
	cp := *account
	cp.ID = m.nextAcctID
	m.accounts[cp.ID] = &cp
	m.byUser[cp.UserID] = cp.ID
	out := cp
	return &out, nil
}

func (m *Memory) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *account
	m.accounts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *Memory) Append(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTxID++
	cp := *tx
	cp.ID = m.nextTxID
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.log[cp.AccountID] = append(m.log[cp.AccountID], cp)
	out := cp
	return &out, nil
}

func (m *Memory) Recent(ctx context.Context, accountID int64, limit int) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.log[accountID]
	out := make([]domain.Transaction, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (m *Memory) All(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.log[accountID]
	out := make([]domain.Transaction, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}
