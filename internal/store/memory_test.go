package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchamoorthee/ledgerbot/internal/domain"
)

func TestMemoryAccountLifecycle(t *testing.T) {
	m := NewMemory()

	_, err := m.Find(context.Background(), 101)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	created, err := m.Create(context.Background(), &domain.Account{
		UserID:    101,
		Username:  "alice",
		Balance:   decimal.Zero,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	found, err := m.Find(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	byID, err := m.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(101), byID.UserID)

	found.Balance = decimal.RequireFromString("12.34")
	_, err = m.Update(context.Background(), found)
	require.NoError(t, err)

	// Mutating the returned copy must not leak into the store.
	found.Balance = decimal.RequireFromString("99.99")
	fresh, err := m.Find(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "12.34", fresh.Balance.StringFixed(2))

	_, err = m.Update(context.Background(), &domain.Account{ID: 777, UserID: 777})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestMemoryAtomicallyCommitsOnSuccess(t *testing.T) {
	m := NewMemory()

	err := m.Atomically(context.Background(), func(accounts AccountStore, transactions TransactionStore) error {
		account, err := accounts.Create(context.Background(), &domain.Account{UserID: 101, Balance: decimal.Zero})
		if err != nil {
			return err
		}
		account.Balance = decimal.RequireFromString("50.00")
		if _, err := accounts.Update(context.Background(), account); err != nil {
			return err
		}
		_, err = transactions.Append(context.Background(), &domain.Transaction{
			AccountID: account.ID,
			Kind:      domain.KindDeposit,
			Amount:    decimal.RequireFromString("50.00"),
		})
		return err
	})
	require.NoError(t, err)

	account, err := m.Find(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "50.00", account.Balance.StringFixed(2))
	history, err := m.All(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestMemoryAtomicallyDiscardsOnError(t *testing.T) {
	m := NewMemory()
	seeded, err := m.Create(context.Background(), &domain.Account{UserID: 101, Balance: decimal.RequireFromString("10.00")})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.Atomically(context.Background(), func(accounts AccountStore, transactions TransactionStore) error {
		account, err := accounts.Find(context.Background(), 101)
		if err != nil {
			return err
		}
		account.Balance = decimal.RequireFromString("99.00")
		if _, err := accounts.Update(context.Background(), account); err != nil {
			return err
		}
		if _, err := transactions.Append(context.Background(), &domain.Transaction{
			AccountID: account.ID,
			Kind:      domain.KindDeposit,
			Amount:    decimal.RequireFromString("89.00"),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing from the failed unit is visible.
	account, err := m.Find(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "10.00", account.Balance.StringFixed(2))
	history, err := m.All(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryTransactionLogOrdering(t *testing.T) {
	m := NewMemory()
	account, err := m.Create(context.Background(), &domain.Account{UserID: 101, Balance: decimal.Zero})
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		_, err = m.Append(context.Background(), &domain.Transaction{
			AccountID: account.ID,
			Kind:      domain.KindDeposit,
			Amount:    decimal.NewFromInt(int64(i)),
		})
		require.NoError(t, err)
	}

	recent, err := m.Recent(context.Background(), account.ID, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "5.00", recent[0].Amount.StringFixed(2))
	assert.Equal(t, "3.00", recent[2].Amount.StringFixed(2))
	assert.False(t, recent[0].CreatedAt.IsZero())

	all, err := m.All(context.Background(), account.ID)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "5.00", all[0].Amount.StringFixed(2))
	assert.Equal(t, "1.00", all[4].Amount.StringFixed(2))

	// Ids are monotonically increasing in append order.
	assert.Greater(t, all[0].ID, all[4].ID)
}
