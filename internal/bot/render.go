package bot

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/ledgerbot/internal/domain"
	"github.com/punchamoorthee/ledgerbot/internal/money"
)

const timestampLayout = "02.01.2006 15:04"

func kindCaption(kind domain.TransactionKind) string {
	switch kind {
	case domain.KindDeposit:
		return "➕ Deposit"
	case domain.KindWithdrawal:
		return "➖ Withdrawal"
	case domain.KindTransferOut:
		return "📤 Transfer out"
	case domain.KindTransferIn:
		return "📥 Transfer in"
	}
	return string(kind)
}

func renderHistory(history []domain.Transaction) string {
	if len(history) == 0 {
		return "📜 No transactions yet."
	}

	var b strings.Builder
	b.WriteString("📜 Transaction history (last " + strconv.Itoa(len(history)) + "):\n\n")
	for _, tx := range history {
		b.WriteString(kindCaption(tx.Kind) + ": " + money.Format(tx.Amount) + "\n")
		b.WriteString("📅 " + tx.CreatedAt.Format(timestampLayout) + "\n")
		if tx.Description != "" {
			b.WriteString("📝 " + tx.Description + "\n")
		}
		if tx.CounterpartyID != nil {
			b.WriteString("👤 User " + strconv.FormatInt(*tx.CounterpartyID, 10) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderStatistics(balance decimal.Decimal, stats *domain.Statistics) string {
	var b strings.Builder
	b.WriteString("📊 Statistics\n\n")
	b.WriteString("💰 Balance: " + money.Format(balance) + "\n\n")

	b.WriteString("➕ Deposits: " + money.Format(stats.TotalDeposits) +
		" (" + strconv.Itoa(stats.DepositCount) + "), avg " + money.Format(stats.AvgDeposit) + "\n")
	b.WriteString("➖ Withdrawals: " + money.Format(stats.TotalWithdrawals) +
		" (" + strconv.Itoa(stats.WithdrawalCount) + "), avg " + money.Format(stats.AvgWithdrawal) + "\n")

	if stats.TransferOutCount > 0 || stats.TransferInCount > 0 {
		b.WriteString("📤 Transfers out: " + money.Format(stats.TotalTransfersOut) +
			" (" + strconv.Itoa(stats.TransferOutCount) + "), avg " + money.Format(stats.AvgTransferOut) + "\n")
		b.WriteString("📥 Transfers in: " + money.Format(stats.TotalTransfersIn) +
			" (" + strconv.Itoa(stats.TransferInCount) + "), avg " + money.Format(stats.AvgTransferIn) + "\n")
	}

	b.WriteString("\n🧾 Total transactions: " + strconv.Itoa(stats.TotalTransactions))
	return b.String()
}
