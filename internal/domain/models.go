package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is a typed string identifying the kind of ledger record.
type TransactionKind string

const (
	KindDeposit     TransactionKind = "deposit"
	KindWithdrawal  TransactionKind = "withdrawal"
	KindTransferOut TransactionKind = "transfer_out"
	KindTransferIn  TransactionKind = "transfer_in"
)

// Account represents a user's balance in the ledger. UserID is the stable
// external identity the messaging channel resolves the user to; ID is
// assigned by the store.
type Account struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Username  string          `json:"username,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// Transaction is the immutable record of one balance-affecting event.
// CounterpartyID is set only for transfer kinds and holds the other
// side's external user id.
type Transaction struct {
	ID             int64           `json:"id"`
	AccountID      int64           `json:"account_id"`
	Kind           TransactionKind `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description,omitempty"`
	CounterpartyID *int64          `json:"counterparty_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Statistics aggregates an account's full transaction history per kind.
// Averages are scale-2, rounded half-up, zero when the kind has no records.
type Statistics struct {
	TotalDeposits     decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals  decimal.Decimal `json:"total_withdrawals"`
	TotalTransfersOut decimal.Decimal `json:"total_transfers_out"`
	TotalTransfersIn  decimal.Decimal `json:"total_transfers_in"`
	DepositCount      int             `json:"deposit_count"`
	WithdrawalCount   int             `json:"withdrawal_count"`
	TransferOutCount  int             `json:"transfer_out_count"`
	TransferInCount   int             `json:"transfer_in_count"`
	TotalTransactions int             `json:"total_transactions"`
	AvgDeposit        decimal.Decimal `json:"avg_deposit"`
	AvgWithdrawal     decimal.Decimal `json:"avg_withdrawal"`
	AvgTransferOut    decimal.Decimal `json:"avg_transfer_out"`
	AvgTransferIn     decimal.Decimal `json:"avg_transfer_in"`
}
