package conversation

import (
	"github.com/hirepal/hirepal/internal/candidate"
	"github.com/hirepal/hirepal/internal/review"
)

// Read-only projections for the presentation layer. Returned slices are
// copies; messages themselves are immutable.

// Messages returns the ordered message list.
func (c *Controller) Messages() []*Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Message, len(c.messages))
	copy(out, c.messages)

	return out
}

// LastMessage returns the newest message or nil.
func (c *Controller) LastMessage() *Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.messages) == 0 {
		return nil
	}

	return c.messages[len(c.messages)-1]
}

// History returns archived conversations, most recent first.
func (c *Controller) History() []*HistoryItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*HistoryItem, len(c.history))
	copy(out, c.history)

	return out
}

// Typing reports whether a submission is awaiting the backend.
func (c *Controller) Typing() bool {
	return c.typing.Load()
}

// SessionID returns the current session identifier, empty before the first
// submission of a conversation.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sessionID
}

// CurrentCandidate returns the candidate at the message's cursor, or nil
// when the message has none left to review.
func (c *Controller) CurrentCandidate(messageID string) *candidate.Candidate {
	c.mu.Lock()
	msg := c.findMessage(messageID)
	c.mu.Unlock()

	if msg == nil || !msg.HasCandidates() {
		return nil
	}

	if c.machine.IsExhausted(messageID) {
		return nil
	}

	cursor := c.machine.Cursor(messageID)
	if cursor >= msg.Candidates.Len() {
		return nil
	}

	return msg.Candidates.Items[cursor]
}

// CursorPosition returns the 0-based cursor and total for the message.
func (c *Controller) CursorPosition(messageID string) (index, total int) {
	c.mu.Lock()
	msg := c.findMessage(messageID)
	c.mu.Unlock()

	if msg == nil || !msg.HasCandidates() {
		return 0, 0
	}

	return c.machine.Cursor(messageID), msg.Candidates.Len()
}

// DecisionFor returns the decision tag for a candidate id.
func (c *Controller) DecisionFor(candidateID string) review.Decision {
	return c.machine.DecisionFor(candidateID)
}

// Shortlist returns shortlisted candidates in insertion order.
func (c *Controller) Shortlist() *candidate.Candidates {
	return c.machine.Shortlist()
}

// ShortlistCount returns the shortlist size.
func (c *Controller) ShortlistCount() int {
	return c.machine.ShortlistCount()
}

// PendingUndo reports whether the last rejection is still reversible.
func (c *Controller) PendingUndo() bool {
	return c.machine.PendingUndo()
}

// findMessage must be called with c.mu held.
func (c *Controller) findMessage(id string) *Message {
	for _, msg := range c.messages {
		if msg.ID == id {
			return msg
		}
	}

	return nil
}
