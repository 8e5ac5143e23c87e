// Package store defines the durable collaborator contracts of the ledger
// engine and ships a postgres and an in-memory implementation.
package store

import (
	"context"

	"github.com/punchamoorthee/ledgerbot/internal/domain"
)

// AccountStore is a key-value-like store of accounts. Lookups return
// domain.ErrAccountNotFound when the account is absent.
type AccountStore interface {
	// Find looks an account up by its external user identity.
	Find(ctx context.Context, userID int64) (*domain.Account, error)
	// FindByID looks an account up by its store-assigned id.
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	// Create persists a new account and returns it with its assigned id.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// Update replaces the stored account (full replace).
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
}

// Store combines the two contracts with an atomic execution boundary.
// Everything fn does against the stores it receives is applied as one
// unit: either all of it becomes visible or none of it does.
type Store interface {
	AccountStore
	TransactionStore
	Atomically(ctx context.Context, fn func(AccountStore, TransactionStore) error) error
}

// TransactionStore is an append-and-query log of transactions ordered by
// recency of creation.
type TransactionStore interface {
	// Append persists a new record and returns it with id and timestamp set.
	Append(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	// Recent returns up to limit records for the account, most recent first.
	Recent(ctx context.Context, accountID int64, limit int) ([]domain.Transaction, error)
	// All returns every record for the account, most recent first.
	All(ctx context.Context, accountID int64) ([]domain.Transaction, error)
}
