package dialog

import (
	"sync"
	"time"

	"github.com/m3rciful/shopbot/internal/catalog"
)

// Step identifies where a chat currently is in a conversation.
type Step int

const (
	// StepIdle indicates there is no active conversation in the chat.
	StepIdle Step = iota
	// StepPhone awaits the contact phone number.
	StepPhone
	// StepAddress awaits the delivery address for the drafted order.
	StepAddress
	// StepComment awaits the order comment, the last input before finalize.
	StepComment
)

// String returns the step name used in logs.
func (s Step) String() string {
	switch s {
	case StepPhone:
		return "phone"
	case StepAddress:
		return "address"
	case StepComment:
		return "comment"
	default:
		return "idle"
	}
}

// Draft accumulates order inputs across steps until finalize.
type Draft struct {
	Product    catalog.Product
	HasProduct bool
	Address    string
}

type session struct {
	step    Step
	draft   Draft
	touched time.Time
}

// Manager tracks conversation sessions per chat. All methods are safe for
// concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*session
	now      func() time.Time
}

// NewManager constructs an empty in-memory session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int64]*session),
		now:      time.Now,
	}
}

func (m *Manager) get(chatID int64) *session {
	sess, ok := m.sessions[chatID]
	if !ok {
		sess = &session{}
		m.sessions[chatID] = sess
	}
	sess.touched = m.now()
	return sess
}

// Step returns the current step for a chat, StepIdle if no session exists.
func (m *Manager) Step(chatID int64) Step {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[chatID]; ok {
		return sess.step
	}
	return StepIdle
}

// SetStep moves the chat to the given step, creating a session if necessary.
func (m *Manager) SetStep(chatID int64, step Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(chatID).step = step
}

// SelectProduct stores the chosen product in the chat draft.
func (m *Manager) SelectProduct(chatID int64, p catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.get(chatID)
	sess.draft.Product = p
	sess.draft.HasProduct = true
}

// SetAddress stores the delivery address in the chat draft.
func (m *Manager) SetAddress(chatID int64, address string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(chatID).draft.Address = address
}

// Draft returns a copy of the current draft for a chat.
func (m *Manager) Draft(chatID int64) (Draft, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[chatID]; ok {
		return sess.draft, true
	}
	return Draft{}, false
}

// Reset removes the session for a chat entirely.
func (m *Manager) Reset(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}

// InProgress reports whether the chat has an active step other than idle.
func (m *Manager) InProgress(chatID int64) bool {
	return m.Step(chatID) != StepIdle
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ExpireIdle drops sessions untouched for longer than ttl and returns the
// number removed. A zero or negative ttl disables the sweep.
func (m *Manager) ExpireIdle(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-ttl)
	expired := 0
	for chatID, sess := range m.sessions {
		if sess.touched.Before(cutoff) {
			delete(m.sessions, chatID)
			expired++
		}
	}
	return expired
}
