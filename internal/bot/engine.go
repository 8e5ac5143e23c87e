// Package bot turns the stream of inbound chat messages into ledger
// operations and outbound replies, tracking a small explicit state per
// conversation.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/punchamoorthee/ledgerbot/internal/domain"
	"github.com/punchamoorthee/ledgerbot/internal/ledger"
	"github.com/punchamoorthee/ledgerbot/internal/money"
)

const historyPageSize = 10

// Message is one inbound user message, already resolved to a stable
// external identity by the channel.
type Message struct {
	ConversationID int64  `json:"conversation_id"`
	UserID         int64  `json:"user_id"`
	Username       string `json:"username,omitempty"`
	Text           string `json:"text"`
}

// Reply is one outbound message. Keyboard, when present, is the button
// layout the presentation layer should offer next.
type Reply struct {
	ConversationID int64      `json:"conversation_id"`
	Text           string     `json:"text"`
	Keyboard       [][]string `json:"keyboard,omitempty"`
}

type Engine struct {
	ledger   *ledger.Service
	sessions SessionStore
}

func NewEngine(ledgerService *ledger.Service, sessions SessionStore) *Engine {
	return &Engine{ledger: ledgerService, sessions: sessions}
}

// HandleMessage processes one inbound message and returns the replies.
// Messages belonging to the same conversation are serialized in arrival
// order via the session lock.
func (e *Engine) HandleMessage(ctx context.Context, msg Message) []Reply {
	session := e.sessions.Get(msg.ConversationID)
	session.mu.Lock()
	defer session.mu.Unlock()

	reply, err := e.handle(ctx, session, msg)
	if err != nil {
		// Unclassified failure: report generically and reset so the
		// conversation cannot get stuck in a waiting state.
		log.Printf("message handling failed for conversation %d: %v", msg.ConversationID, err)
		session.reset()
		return []Reply{e.reply(msg, "❌ Something went wrong. Please try again.", MainMenu())}
	}
	return []Reply{reply}
}

func (e *Engine) handle(ctx context.Context, session *Session, msg Message) (Reply, error) {
	// Registration happens exactly once per message, before any branching.
	account, err := e.ledger.RegisterOrFetch(ctx, msg.UserID, msg.Username)
	if err != nil {
		return Reply{}, fmt.Errorf("registration failed: %w", err)
	}

	// Dispatch priority: start > cancel > menu command > stateful input.
	if msg.Text == LabelStart {
		session.reset()
		return e.reply(msg, greeting(account.Username), MainMenu()), nil
	}
	if msg.Text == LabelCancel {
		session.reset()
		return e.reply(msg, "Operation cancelled.", MainMenu()), nil
	}
	if cmd, ok := ParseCommand(msg.Text); ok {
		// A menu command always abandons any in-progress flow.
		session.reset()
		return e.handleCommand(ctx, session, msg, cmd)
	}

	switch session.State {
	case StateAwaitingDepositAmount:
		return e.handleDepositAmount(ctx, session, msg)
	case StateAwaitingWithdrawalAmount:
		return e.handleWithdrawalAmount(ctx, session, msg)
	case StateAwaitingTransferRecipient:
		return e.handleTransferRecipient(ctx, session, msg)
	case StateAwaitingTransferAmount:
		return e.handleTransferAmount(ctx, session, msg)
	default:
		return e.reply(msg, "Please use the menu buttons.", MainMenu()), nil
	}
}

func (e *Engine) handleCommand(ctx context.Context, session *Session, msg Message, cmd Command) (Reply, error) {
	switch cmd {
	case CmdBalance:
		balance, err := e.ledger.GetBalance(ctx, msg.UserID)
		if err != nil {
			return e.recoverable(msg, err, MainMenu())
		}
		return e.reply(msg, "💰 Your balance: "+money.Format(balance), MainMenu()), nil

	case CmdDeposit:
		session.State = StateAwaitingDepositAmount
		return e.reply(msg, "💳 Enter the amount to deposit:", CancelMenu()), nil

	case CmdWithdraw:
		session.State = StateAwaitingWithdrawalAmount
		return e.reply(msg, "💸 Enter the amount to withdraw:", CancelMenu()), nil

	case CmdTransfer:
		session.State = StateAwaitingTransferRecipient
		return e.reply(msg, "🔄 Enter the recipient's user id:", CancelMenu()), nil

	case CmdHistory:
		history, err := e.ledger.GetHistory(ctx, msg.UserID, historyPageSize)
		if err != nil {
			return e.recoverable(msg, err, MainMenu())
		}
		return e.reply(msg, renderHistory(history), MainMenu()), nil

	case CmdStatistics:
		balance, err := e.ledger.GetBalance(ctx, msg.UserID)
		if err != nil {
			return e.recoverable(msg, err, MainMenu())
		}
		stats, err := e.ledger.GetStatistics(ctx, msg.UserID)
		if err != nil {
			return e.recoverable(msg, err, MainMenu())
		}
		return e.reply(msg, renderStatistics(balance, stats), MainMenu()), nil
	}
	return Reply{}, fmt.Errorf("unhandled menu command %d", cmd)
}

func (e *Engine) handleDepositAmount(ctx context.Context, session *Session, msg Message) (Reply, error) {
	amount, err := money.Parse(msg.Text)
	if err != nil {
		return e.retryable(msg, err)
	}
	if _, err := e.ledger.Deposit(ctx, msg.UserID, amount, "Account deposit"); err != nil {
		return e.retryable(msg, err)
	}
	balance, err := e.ledger.GetBalance(ctx, msg.UserID)
	if err != nil {
		return Reply{}, err
	}
	session.reset()
	text := "✅ Deposited " + money.Format(amount) + "\n\n💰 New balance: " + money.Format(balance)
	return e.reply(msg, text, MainMenu()), nil
}

func (e *Engine) handleWithdrawalAmount(ctx context.Context, session *Session, msg Message) (Reply, error) {
	amount, err := money.Parse(msg.Text)
	if err != nil {
		return e.retryable(msg, err)
	}
	if _, err := e.ledger.Withdraw(ctx, msg.UserID, amount, "Cash withdrawal"); err != nil {
		return e.retryable(msg, err)
	}
	balance, err := e.ledger.GetBalance(ctx, msg.UserID)
	if err != nil {
		return Reply{}, err
	}
	session.reset()
	text := "✅ Withdrew " + money.Format(amount) + "\n\n💰 New balance: " + money.Format(balance)
	return e.reply(msg, text, MainMenu()), nil
}

func (e *Engine) handleTransferRecipient(ctx context.Context, session *Session, msg Message) (Reply, error) {
	recipientID, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
	if err != nil {
		text := "❌ Invalid user id. Enter a number, e.g. 123456789.\n\nTry again or cancel the operation."
		return e.reply(msg, text, CancelMenu()), nil
	}
	if recipientID == msg.UserID {
		return e.retryable(msg, domain.ErrSelfTransfer)
	}
	if _, err := e.ledger.Lookup(ctx, recipientID); err != nil {
		return e.retryable(msg, err)
	}
	session.PendingRecipient = recipientID
	session.State = StateAwaitingTransferAmount
	return e.reply(msg, "🔄 Enter the amount to transfer:", CancelMenu()), nil
}

func (e *Engine) handleTransferAmount(ctx context.Context, session *Session, msg Message) (Reply, error) {
	if session.PendingRecipient == 0 {
		// Should be unreachable; reset rather than strand the conversation.
		log.Printf("conversation %d awaiting transfer amount without a recipient: %v",
			msg.ConversationID, domain.ErrInconsistentState)
		session.reset()
		return e.reply(msg, "❌ Something went wrong. Please start the transfer again.", MainMenu()), nil
	}
	amount, err := money.Parse(msg.Text)
	if err != nil {
		return e.retryable(msg, err)
	}
	recipientID := session.PendingRecipient
	description := "Transfer to user " + strconv.FormatInt(recipientID, 10)
	if _, err := e.ledger.Transfer(ctx, msg.UserID, recipientID, amount, description); err != nil {
		return e.retryable(msg, err)
	}
	balance, err := e.ledger.GetBalance(ctx, msg.UserID)
	if err != nil {
		return Reply{}, err
	}
	session.reset()
	text := "✅ Transferred " + money.Format(amount) + " to user " + strconv.FormatInt(recipientID, 10) +
		"\n\n💰 New balance: " + money.Format(balance)
	return e.reply(msg, text, MainMenu()), nil
}

// retryable turns a recoverable ledger error into a re-prompt, leaving the
// session state unchanged so the user can try again or cancel. Unclassified
// errors propagate to the top-level reset.
func (e *Engine) retryable(msg Message, err error) (Reply, error) {
	text, ok := userErrorText(err)
	if !ok {
		return Reply{}, err
	}
	return e.reply(msg, "❌ "+text+"\n\nTry again or cancel the operation.", CancelMenu()), nil
}

// recoverable reports a ledger error from a menu command; state is already
// Idle on this path.
func (e *Engine) recoverable(msg Message, err error, keyboard [][]string) (Reply, error) {
	text, ok := userErrorText(err)
	if !ok {
		return Reply{}, err
	}
	return e.reply(msg, "❌ "+text, keyboard), nil
}

func (e *Engine) reply(msg Message, text string, keyboard [][]string) Reply {
	return Reply{ConversationID: msg.ConversationID, Text: text, Keyboard: keyboard}
}

func userErrorText(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrMalformedAmount):
		return "Invalid amount format. Enter a number, e.g. 1000 or 1000.50.", true
	case errors.Is(err, domain.ErrInvalidAmount):
		return "Amount must be positive.", true
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "Insufficient funds.", true
	case errors.Is(err, domain.ErrSelfTransfer):
		return "You cannot transfer money to yourself.", true
	case errors.Is(err, domain.ErrAccountNotFound):
		return "Account not found.", true
	}
	return "", false
}

func greeting(name string) string {
	if name == "" {
		name = "there"
	}
	return "👋 Hi, " + name + "!\n\nWelcome to the banking assistant!\n\nChoose an action from the menu:"
}
