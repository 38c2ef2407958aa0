// Package review governs how a user moves through a message's candidate
// sequence: per-message cursors, terminal shortlist/reject decisions, a
// single time-bounded undo slot and the deduplicated shortlist.
package review

import (
	"sync"
	"time"

	"github.com/hirepal/hirepal/internal/candidate"
)

// DefaultUndoWindow is how long a rejection stays reversible.
const DefaultUndoWindow = 5 * time.Second

// Direction is the triage gesture for a candidate.
type Direction int

const (
	// Left rejects the candidate.
	Left Direction = iota
	// Right shortlists the candidate.
	Right
)

// Decision is the recorded outcome for a candidate.
type Decision int

const (
	Unset Decision = iota
	Shortlisted
	Rejected
)

func (d Decision) String() string {
	switch d {
	case Shortlisted:
		return "shortlisted"
	case Rejected:
		return "rejected"
	default:
		return "unset"
	}
}

// Effect tells the caller what a decision did to the message's cursor.
type Effect int

const (
	// None means the call was a no-op (duplicate decision).
	None Effect = iota
	// Advanced means the cursor moved to the next candidate.
	Advanced
	// Exhausted means the last candidate of the message was just decided.
	Exhausted
)

type pendingUndo struct {
	candidateID string
	messageID   string
	expiresAt   time.Time
	// causedExhaustion is set when this rejection decided the last
	// candidate of its message. Only then may an undo leave the cursor in
	// place and resume on that candidate.
	causedExhaustion bool
}

// Machine owns all per-review mutable state. It is the single writer for
// cursors, decisions, the undo buffer and the shortlist; the expiry callback
// is the only other goroutine that touches it, guarded by the mutex and an
// identity check.
type Machine struct {
	mu         sync.Mutex
	clock      Clock
	undoWindow time.Duration

	cursors   map[string]int
	exhausted map[string]bool
	decisions map[string]Decision

	pending   *pendingUndo
	undoTimer Timer

	shortlist   []*candidate.Candidate
	shortlisted map[string]bool
}

// New creates a machine with the given undo window. A non-positive window
// falls back to DefaultUndoWindow. A nil clock means wall-clock time.
func New(undoWindow time.Duration, clock Clock) *Machine {
	if undoWindow <= 0 {
		undoWindow = DefaultUndoWindow
	}
	if clock == nil {
		clock = SystemClock()
	}

	return &Machine{
		clock:       clock,
		undoWindow:  undoWindow,
		cursors:     make(map[string]int),
		exhausted:   make(map[string]bool),
		decisions:   make(map[string]Decision),
		shortlisted: make(map[string]bool),
	}
}

// InitCursor registers a message whose candidates are about to be reviewed,
// pointing its cursor at the first candidate.
func (m *Machine) InitCursor(messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cursors[messageID] = 0
	delete(m.exhausted, messageID)
}

// Decide records the triage outcome for c within the message holding total
// candidates and advances that message's cursor. Re-deciding an already
// decided candidate is a guarded no-op so duplicate calls cannot corrupt
// cursor state.
func (m *Machine) Decide(c *candidate.Candidate, messageID string, total int, dir Direction) Effect {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.decisions[c.ID] != Unset {
		return None
	}

	if dir == Right {
		m.decisions[c.ID] = Shortlisted
		if !m.shortlisted[c.ID] {
			m.shortlisted[c.ID] = true
			m.shortlist = append(m.shortlist, c)
		}
	} else {
		m.decisions[c.ID] = Rejected
		m.armUndo(c.ID, messageID)
	}

	cursor := m.cursors[messageID]
	if cursor < total-1 {
		m.cursors[messageID] = cursor + 1
		return Advanced
	}

	m.exhausted[messageID] = true
	if m.pending != nil && m.pending.candidateID == c.ID {
		m.pending.causedExhaustion = true
	}
	return Exhausted
}

// armUndo points the undo buffer at the rejection and schedules its expiry,
// canceling any timer armed for a previous rejection. The callback clears
// the buffer only if it still refers to the same candidate, so a stale timer
// can never wipe a newer entry.
func (m *Machine) armUndo(candidateID, messageID string) {
	if m.undoTimer != nil {
		m.undoTimer.Stop()
	}

	m.pending = &pendingUndo{
		candidateID: candidateID,
		messageID:   messageID,
		expiresAt:   m.clock.Now().Add(m.undoWindow),
	}

	m.undoTimer = m.clock.AfterFunc(m.undoWindow, func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.pending != nil && m.pending.candidateID == candidateID {
			m.pending = nil
		}
	})
}

// Undo reverts the most recent rejection if its window has not elapsed.
// It returns the message whose cursor moved back, or ok=false when there
// was nothing to undo. Shortlisting is never undoable; right swipes do not
// populate the buffer.
func (m *Machine) Undo() (messageID string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.pending
	if p == nil || m.clock.Now().After(p.expiresAt) {
		return "", false
	}

	m.decisions[p.candidateID] = Unset

	// Reviewing resumes either way; only the cursor differs. When the
	// buffered rejection was the last candidate shown the cursor stays on
	// it, otherwise it walks back by one even if a later decision has
	// exhausted the message since.
	delete(m.exhausted, p.messageID)
	if !p.causedExhaustion && m.cursors[p.messageID] > 0 {
		m.cursors[p.messageID]--
	}

	m.pending = nil
	if m.undoTimer != nil {
		m.undoTimer.Stop()
		m.undoTimer = nil
	}

	return p.messageID, true
}

// PendingUndo reports whether a rejection is currently reversible.
func (m *Machine) PendingUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pending != nil && !m.clock.Now().After(m.pending.expiresAt)
}

// Cursor returns the current candidate index for the message.
func (m *Machine) Cursor(messageID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cursors[messageID]
}

// IsExhausted reports whether every candidate of the message was decided.
func (m *Machine) IsExhausted(messageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.exhausted[messageID]
}

// DecisionFor returns the recorded decision for the candidate id.
func (m *Machine) DecisionFor(candidateID string) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.decisions[candidateID]
}

// Shortlist returns the shortlisted candidates in insertion order.
func (m *Machine) Shortlist() *candidate.Candidates {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]*candidate.Candidate, len(m.shortlist))
	copy(items, m.shortlist)

	return &candidate.Candidates{Items: items}
}

// ShortlistCount returns the number of shortlisted candidates.
func (m *Machine) ShortlistCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.shortlist)
}

// ClearShortlist empties the shortlist. Decisions are untouched: a cleared
// candidate stays marked shortlisted and cannot be decided again.
func (m *Machine) ClearShortlist() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shortlist = nil
	m.shortlisted = make(map[string]bool)
}

// Reset discards cursors, decisions and any pending undo for a fresh
// conversation. The shortlist survives resets.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cursors = make(map[string]int)
	m.exhausted = make(map[string]bool)
	m.decisions = make(map[string]Decision)
	m.pending = nil
	if m.undoTimer != nil {
		m.undoTimer.Stop()
		m.undoTimer = nil
	}
}
