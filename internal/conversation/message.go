package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/hirepal/hirepal/internal/candidate"
)

// Author identifies who wrote a message.
type Author string

const (
	AuthorBot  Author = "bot"
	AuthorUser Author = "user"
)

// Message is one entry of the conversation. Messages are immutable once
// appended; only bot messages may carry candidates.
type Message struct {
	ID         string
	Author     Author
	Text       string
	Candidates *candidate.Candidates
	CreatedAt  time.Time
}

func newMessage(author Author, text string, now time.Time) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      text,
		CreatedAt: now,
	}
}

// HasCandidates reports whether the message carries a candidate sequence.
func (m *Message) HasCandidates() bool {
	return m.Candidates != nil && m.Candidates.Len() > 0
}

// HistoryItem is the archived summary of a finished conversation.
type HistoryItem struct {
	ID           string
	Title        string
	LastMessage  string
	MessageCount int
	CreatedAt    time.Time
}
