// Package ledger contains the business logic over accounts and the
// transaction log. It is the sole mutator of both: every balance change
// is committed atomically with its log append, under a per-account lock.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/ledgerbot/internal/domain"
	"github.com/punchamoorthee/ledgerbot/internal/store"
)

type Service struct {
	store store.Store
	locks *accountLocks
}

func NewService(st store.Store) *Service {
	return &Service{
		store: st,
		locks: newAccountLocks(),
	}
}

// RegisterOrFetch returns the account for userID, creating it with a zero
// balance on first contact. A non-empty username that differs from the
// stored one is updated, last write wins. Idempotent.
func (s *Service) RegisterOrFetch(ctx context.Context, userID int64, username string) (*domain.Account, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	account, err := s.store.Find(ctx, userID)
	if err == nil {
		if username != "" && username != account.Username {
			account.Username = username
			return s.store.Update(ctx, account)
		}
		return account, nil
	}
	if err != domain.ErrAccountNotFound {
		return nil, err
	}

	return s.store.Create(ctx, &domain.Account{
		UserID:    userID,
		Username:  username,
		Balance:   decimal.Zero,
		CreatedAt: time.Now(),
	})
}

// Lookup fetches an account without creating it.
func (s *Service) Lookup(ctx context.Context, userID int64) (*domain.Account, error) {
	return s.store.Find(ctx, userID)
}

func (s *Service) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	account, err := s.store.Find(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// Deposit increases the balance and appends a deposit record as one
// atomic unit: a failure of either leaves the account untouched.
func (s *Service) Deposit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	var record *domain.Transaction
	err := s.store.Atomically(ctx, func(accounts store.AccountStore, transactions store.TransactionStore) error {
		account, err := accounts.Find(ctx, userID)
		if err != nil {
			return err
		}
		account.Balance = account.Balance.Add(amount)
		if _, err := accounts.Update(ctx, account); err != nil {
			return err
		}
		record, err = transactions.Append(ctx, &domain.Transaction{
			AccountID:   account.ID,
			Kind:        domain.KindDeposit,
			Amount:      amount,
			Description: description,
			CreatedAt:   time.Now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Withdraw decreases the balance and appends a withdrawal record as one
// atomic unit. The balance stays non-negative; overdrawing changes nothing.
func (s *Service) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	var record *domain.Transaction
	err := s.store.Atomically(ctx, func(accounts store.AccountStore, transactions store.TransactionStore) error {
		account, err := accounts.Find(ctx, userID)
		if err != nil {
			return err
		}
		if account.Balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}
		account.Balance = account.Balance.Sub(amount)
		if _, err := accounts.Update(ctx, account); err != nil {
			return err
		}
		record, err = transactions.Append(ctx, &domain.Transaction{
			AccountID:   account.ID,
			Kind:        domain.KindWithdrawal,
			Amount:      amount,
			Description: description,
			CreatedAt:   time.Now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Transfer moves amount between two accounts: two balance updates and two
// linked records in one atomic unit, under both account locks, taken in
// ascending identity order. Returns the sender-side record.
func (s *Service) Transfer(ctx context.Context, fromUserID, toUserID int64, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if fromUserID == toUserID {
		return nil, domain.ErrSelfTransfer
	}

	unlock := s.locks.lockPair(fromUserID, toUserID)
	defer unlock()

	var outbound *domain.Transaction
	err := s.store.Atomically(ctx, func(accounts store.AccountStore, transactions store.TransactionStore) error {
		sender, err := accounts.Find(ctx, fromUserID)
		if err != nil {
			return err
		}
		recipient, err := accounts.Find(ctx, toUserID)
		if err != nil {
			return err
		}
		if sender.Balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}

		sender.Balance = sender.Balance.Sub(amount)
		if _, err := accounts.Update(ctx, sender); err != nil {
			return err
		}
		recipient.Balance = recipient.Balance.Add(amount)
		if _, err := accounts.Update(ctx, recipient); err != nil {
			return err
		}

		now := time.Now()
		outbound, err = transactions.Append(ctx, &domain.Transaction{
			AccountID:      sender.ID,
			Kind:           domain.KindTransferOut,
			Amount:         amount,
			Description:    description,
			CounterpartyID: &toUserID,
			CreatedAt:      now,
		})
		if err != nil {
			return err
		}

		inboundDescription := "Transfer received"
		if description != "" {
			inboundDescription = description + " (received)"
		}
		_, err = transactions.Append(ctx, &domain.Transaction{
			AccountID:      recipient.ID,
			Kind:           domain.KindTransferIn,
			Amount:         amount,
			Description:    inboundDescription,
			CounterpartyID: &fromUserID,
			CreatedAt:      now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return outbound, nil
}

// GetHistory returns up to limit records for the account, most recent first.
func (s *Service) GetHistory(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error) {
	account, err := s.store.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.Recent(ctx, account.ID, limit)
}

// GetAllHistory returns the full record set, most recent first.
func (s *Service) GetAllHistory(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	account, err := s.store.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.All(ctx, account.ID)
}

// GetStatistics scans the full history once and aggregates totals, counts
// and scale-2 half-up averages per kind.
func (s *Service) GetStatistics(ctx context.Context, userID int64) (*domain.Statistics, error) {
	account, err := s.store.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.store.All(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	stats := &domain.Statistics{
		TotalDeposits:     decimal.Zero,
		TotalWithdrawals:  decimal.Zero,
		TotalTransfersOut: decimal.Zero,
		TotalTransfersIn:  decimal.Zero,
		TotalTransactions: len(all),
	}
	for _, tx := range all {
		switch tx.Kind {
		case domain.KindDeposit:
			stats.TotalDeposits = stats.TotalDeposits.Add(tx.Amount)
			stats.DepositCount++
		case domain.KindWithdrawal:
			stats.TotalWithdrawals = stats.TotalWithdrawals.Add(tx.Amount)
			stats.WithdrawalCount++
		case domain.KindTransferOut:
			stats.TotalTransfersOut = stats.TotalTransfersOut.Add(tx.Amount)
			stats.TransferOutCount++
		case domain.KindTransferIn:
			stats.TotalTransfersIn = stats.TotalTransfersIn.Add(tx.Amount)
			stats.TransferInCount++
		}
	}
	stats.AvgDeposit = average(stats.TotalDeposits, stats.DepositCount)
	stats.AvgWithdrawal = average(stats.TotalWithdrawals, stats.WithdrawalCount)
	stats.AvgTransferOut = average(stats.TotalTransfersOut, stats.TransferOutCount)
	stats.AvgTransferIn = average(stats.TotalTransfersIn, stats.TransferInCount)
	return stats, nil
}

func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}
