package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchamoorthee/ledgerbot/internal/ledger"
	"github.com/punchamoorthee/ledgerbot/internal/store"
)

func newEngine(t *testing.T) (*Engine, *ledger.Service) {
	t.Helper()
	svc := ledger.NewService(store.NewMemory())
	return NewEngine(svc, NewMemorySessions()), svc
}

// send delivers one message for a user whose conversation id equals their
// user id and returns the single reply.
func send(t *testing.T, e *Engine, userID int64, text string) Reply {
	t.Helper()
	replies := e.HandleMessage(context.Background(), Message{
		ConversationID: userID,
		UserID:         userID,
		Username:       "user",
		Text:           text,
	})
	require.Len(t, replies, 1)
	return replies[0]
}

func state(e *Engine, conversationID int64) State {
	return e.sessions.Get(conversationID).State
}

func TestStartGreetsAndShowsMenu(t *testing.T) {
	e, _ := newEngine(t)
	reply := send(t, e, 101, LabelStart)
	assert.Contains(t, reply.Text, "Hi, user")
	assert.Equal(t, MainMenu(), reply.Keyboard)
	assert.Equal(t, StateIdle, state(e, 101))
}

func TestUnrecognizedTextInIdleHintsAtMenu(t *testing.T) {
	e, _ := newEngine(t)
	reply := send(t, e, 101, "hello?")
	assert.Contains(t, reply.Text, "menu")
	assert.Equal(t, StateIdle, state(e, 101))
}

func TestEveryMessageRegistersTheUser(t *testing.T) {
	e, svc := newEngine(t)
	send(t, e, 101, "anything")

	account, err := svc.Lookup(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "user", account.Username)

	// A changed display name is picked up on the next message.
	e.HandleMessage(context.Background(), Message{ConversationID: 101, UserID: 101, Username: "renamed", Text: LabelBalance})
	account, err = svc.Lookup(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "renamed", account.Username)
}

func TestDepositConversation(t *testing.T) {
	e, _ := newEngine(t)

	reply := send(t, e, 101, LabelDeposit)
	assert.Contains(t, reply.Text, "amount to deposit")
	assert.Equal(t, CancelMenu(), reply.Keyboard)
	assert.Equal(t, StateAwaitingDepositAmount, state(e, 101))

	reply = send(t, e, 101, "abc")
	assert.Contains(t, reply.Text, "❌")
	assert.Equal(t, StateAwaitingDepositAmount, state(e, 101), "parse failure keeps state")

	reply = send(t, e, 101, "500")
	assert.Contains(t, reply.Text, "New balance: 500.00")
	assert.Equal(t, MainMenu(), reply.Keyboard)
	assert.Equal(t, StateIdle, state(e, 101))
}

func TestWithdrawalInsufficientFundsKeepsState(t *testing.T) {
	e, _ := newEngine(t)
	send(t, e, 101, LabelDeposit)
	send(t, e, 101, "100")

	send(t, e, 101, LabelWithdraw)
	reply := send(t, e, 101, "200")
	assert.Contains(t, reply.Text, "Insufficient funds")
	assert.Equal(t, StateAwaitingWithdrawalAmount, state(e, 101))

	reply = send(t, e, 101, "60")
	assert.Contains(t, reply.Text, "New balance: 40.00")
	assert.Equal(t, StateIdle, state(e, 101))
}

func TestBalanceCommand(t *testing.T) {
	e, _ := newEngine(t)
	reply := send(t, e, 101, LabelBalance)
	assert.Contains(t, reply.Text, "Your balance: 0.00")
}

func TestMenuCommandOverridesPendingFlow(t *testing.T) {
	e, _ := newEngine(t)
	send(t, e, 101, LabelDeposit)
	require.Equal(t, StateAwaitingDepositAmount, state(e, 101))

	reply := send(t, e, 101, LabelBalance)
	assert.Contains(t, reply.Text, "Your balance")
	assert.Equal(t, StateIdle, state(e, 101), "menu command abandons the pending flow")
}

func TestTransferConversation(t *testing.T) {
	e, _ := newEngine(t)
	send(t, e, 202, LabelStart) // recipient exists
	send(t, e, 101, LabelDeposit)
	send(t, e, 101, "300")

	reply := send(t, e, 101, LabelTransfer)
	assert.Contains(t, reply.Text, "recipient")
	assert.Equal(t, StateAwaitingTransferRecipient, state(e, 101))

	reply = send(t, e, 101, "101")
	assert.Contains(t, reply.Text, "yourself")
	assert.Equal(t, StateAwaitingTransferRecipient, state(e, 101))

	reply = send(t, e, 101, "999")
	assert.Contains(t, reply.Text, "not found")
	assert.Equal(t, StateAwaitingTransferRecipient, state(e, 101))

	reply = send(t, e, 101, "not-a-number")
	assert.Contains(t, reply.Text, "Invalid user id")
	assert.Equal(t, StateAwaitingTransferRecipient, state(e, 101))

	reply = send(t, e, 101, "202")
	assert.Contains(t, reply.Text, "amount to transfer")
	assert.Equal(t, StateAwaitingTransferAmount, state(e, 101))
	assert.Equal(t, int64(202), e.sessions.Get(101).PendingRecipient)

	reply = send(t, e, 101, "100")
	assert.Contains(t, reply.Text, "Transferred 100.00 to user 202")
	assert.Contains(t, reply.Text, "New balance: 200.00")
	assert.Equal(t, StateIdle, state(e, 101))
	assert.Equal(t, int64(0), e.sessions.Get(101).PendingRecipient)
}

func TestCancelClearsPendingTransfer(t *testing.T) {
	e, svc := newEngine(t)
	send(t, e, 202, LabelStart)
	send(t, e, 101, LabelDeposit)
	send(t, e, 101, "300")

	send(t, e, 101, LabelTransfer)
	send(t, e, 101, "202")
	require.Equal(t, StateAwaitingTransferAmount, state(e, 101))

	reply := send(t, e, 101, LabelCancel)
	assert.Contains(t, reply.Text, "cancelled")
	assert.Equal(t, StateIdle, state(e, 101))
	assert.Equal(t, int64(0), e.sessions.Get(101).PendingRecipient)

	// No ledger mutation happened for either side.
	balance, err := svc.GetBalance(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "300.00", balance.StringFixed(2))
	history, err := svc.GetAllHistory(context.Background(), 202)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMissingPendingRecipientResets(t *testing.T) {
	e, _ := newEngine(t)
	session := e.sessions.Get(101)
	session.State = StateAwaitingTransferAmount

	reply := send(t, e, 101, "50")
	assert.Contains(t, reply.Text, "start the transfer again")
	assert.Equal(t, StateIdle, state(e, 101))
}

func TestHistoryRendering(t *testing.T) {
	e, _ := newEngine(t)

	reply := send(t, e, 101, LabelHistory)
	assert.Contains(t, reply.Text, "No transactions yet")

	send(t, e, 101, LabelDeposit)
	send(t, e, 101, "250")
	send(t, e, 202, LabelStart)
	send(t, e, 101, LabelTransfer)
	send(t, e, 101, "202")
	send(t, e, 101, "50")

	reply = send(t, e, 101, LabelHistory)
	assert.Contains(t, reply.Text, "Transaction history (last 2)", "header shows the rendered count")
	assert.Contains(t, reply.Text, "➕ Deposit: 250.00")
	assert.Contains(t, reply.Text, "📤 Transfer out: 50.00")
	assert.Contains(t, reply.Text, "👤 User 202")
	assert.Contains(t, reply.Text, "📝 Account deposit")
}

func TestStatisticsRendering(t *testing.T) {
	e, _ := newEngine(t)
	send(t, e, 101, LabelDeposit)
	send(t, e, 101, "100")
	send(t, e, 101, LabelDeposit)
	send(t, e, 101, "200")

	reply := send(t, e, 101, LabelStatistics)
	assert.Contains(t, reply.Text, "Balance: 300.00")
	assert.Contains(t, reply.Text, "Deposits: 300.00 (2), avg 150.00")
	assert.Contains(t, reply.Text, "Withdrawals: 0.00 (0), avg 0.00")
	assert.NotContains(t, reply.Text, "Transfers out", "transfer section omitted when empty")
	assert.Contains(t, reply.Text, "Total transactions: 2")

	send(t, e, 202, LabelStart)
	send(t, e, 101, LabelTransfer)
	send(t, e, 101, "202")
	send(t, e, 101, "60")

	reply = send(t, e, 101, LabelStatistics)
	assert.Contains(t, reply.Text, "Transfers out: 60.00 (1), avg 60.00")
}
