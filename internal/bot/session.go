package bot

import "sync"

// State records which input the conversation currently expects.
type State int

const (
	StateIdle State = iota
	StateAwaitingDepositAmount
	StateAwaitingWithdrawalAmount
	StateAwaitingTransferRecipient
	StateAwaitingTransferAmount
)

// Session is the per-conversation record. Its mutex serializes message
// handling for the conversation; messages for different conversations run
// concurrently. PendingRecipient is meaningful only in
// StateAwaitingTransferAmount (zero means none recorded).
type Session struct {
	mu               sync.Mutex
	State            State
	PendingRecipient int64
}

func (s *Session) reset() {
	s.State = StateIdle
	s.PendingRecipient = 0
}

// SessionStore hands out the session for a conversation id, creating it
// lazily on first contact. Sessions are process-local; losing them on
// restart is accepted.
type SessionStore interface {
	Get(conversationID int64) *Session
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewMemorySessions returns the in-process SessionStore implementation.
func NewMemorySessions() SessionStore {
	return &memorySessions{sessions: make(map[int64]*Session)}
}

func (m *memorySessions) Get(conversationID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[conversationID]
	if !ok {
		session = &Session{}
		m.sessions[conversationID] = session
	}
	return session
}
