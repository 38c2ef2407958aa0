// Package conversation orchestrates the chat: it owns the message list and
// history, talks to the matching backend through the Gateway, feeds results
// into the normalizer and the review machine, and synthesizes system
// messages for errors and review completion.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hirepal/hirepal/internal/candidate"
	"github.com/hirepal/hirepal/internal/gateway"
	"github.com/hirepal/hirepal/internal/logger"
	"github.com/hirepal/hirepal/internal/review"
	"github.com/hirepal/hirepal/internal/util"
)

const (
	// Greeting opens every fresh conversation.
	Greeting = "Hello 👋 this is HirePal, your recruiting assistant. What role are you hiring for today?"
	// Apology is appended when the gateway is unreachable after retries.
	Apology = "Sorry, I'm having trouble connecting to the server. Please try again shortly."
	// Completion is appended once every candidate of a message is decided.
	Completion = "Great! You've reviewed all candidates. Would you like me to find more matches or help with the next steps?"

	defaultReplyFormat = "I found %d potential candidates for you."
	historyTitleLimit  = 30
)

// Gateway is the messaging backend as the controller sees it.
type Gateway interface {
	CreateSession(ctx context.Context) (string, error)
	Ask(ctx context.Context, sessionID, question string) (*gateway.Payload, error)
}

// Controller is the single writer for the message list, history and session
// identity. Submissions are serialized so responses apply in issuance order
// even under programmatic misuse.
type Controller struct {
	mu      sync.Mutex
	gw      Gateway
	machine *review.Machine
	logger  *zap.Logger
	now     func() time.Time

	messages  []*Message
	history   []*HistoryItem
	sessionID string
	typing    atomic.Bool
}

// New creates a controller with the greeting already in place.
func New(gw Gateway, machine *review.Machine, logger *zap.Logger) *Controller {
	c := &Controller{
		gw:      gw,
		machine: machine,
		logger:  logger,
		now:     time.Now,
	}
	c.messages = []*Message{newMessage(AuthorBot, Greeting, c.now())}

	return c
}

// Submit appends the user utterance and exactly one follow-up bot message.
// Empty or whitespace-only utterances are a no-op. Transport failures never
// escape: they terminate in the fixed apology message.
func (c *Controller) Submit(ctx context.Context, utterance string) {
	if strings.TrimSpace(utterance) == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.append(newMessage(AuthorUser, utterance, c.now()))
	c.typing.Store(true)
	defer c.typing.Store(false)

	sessionID := c.ensureSession(ctx)

	payload, err := c.gw.Ask(ctx, sessionID, utterance)
	if err != nil {
		logger.WithCommonFields(c.logger, sessionID, "").Warn("asking the backend failed",
			zap.String("question", util.TruncateForLog(utterance, 80)),
			zap.Error(err),
		)
		c.append(newMessage(AuthorBot, Apology, c.now()))
		return
	}

	c.appendPayload(payload)
}

func (c *Controller) appendPayload(payload *gateway.Payload) {
	switch {
	case payload.Type == gateway.PayloadError:
		c.append(newMessage(AuthorBot, payload.Content, c.now()))

	case payload.Type == gateway.PayloadCandidates && len(payload.Candidates) > 0:
		now := c.now()
		candidates := candidate.NormalizeAll(payload.Candidates, now)

		reply := payload.Reply
		if reply == "" {
			reply = fmt.Sprintf(defaultReplyFormat, candidates.Len())
		}

		msg := newMessage(AuthorBot, reply, now)
		msg.Candidates = candidates
		c.append(msg)
		c.machine.InitCursor(msg.ID)

		logger.WithCommonFields(c.logger, c.sessionID, msg.ID).Info("received candidates",
			zap.Int("count", candidates.Len()),
			zap.Strings("names", candidates.Names()),
		)

	default:
		text := payload.Reply
		if text == "" {
			text = payload.Content
		}
		c.append(newMessage(AuthorBot, text, c.now()))
	}
}

// ensureSession returns the current session id, establishing one through the
// gateway when missing. After the gateway's retry budget is spent the
// controller proceeds with a locally generated fallback id rather than
// blocking the user.
func (c *Controller) ensureSession(ctx context.Context) string {
	if c.sessionID != "" {
		return c.sessionID
	}

	id, err := c.gw.CreateSession(ctx)
	if err != nil {
		id = "fallback-" + uuid.NewString()
		c.logger.Warn("session creation failed, using fallback id",
			zap.String("session_id", id),
			zap.Error(err),
		)
	}

	c.sessionID = id
	return id
}

func (c *Controller) append(msg *Message) {
	c.messages = append(c.messages, msg)
}

// Decide records a triage decision for the candidate at the message's
// cursor and, when the message is exhausted by it, appends the completion
// message.
func (c *Controller) Decide(candidateID, messageID string, dir review.Direction) review.Effect {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := c.findMessage(messageID)
	if msg == nil || !msg.HasCandidates() {
		return review.None
	}

	cand := msg.Candidates.FindByID(candidateID)
	if cand == nil {
		return review.None
	}

	effect := c.machine.Decide(cand, messageID, msg.Candidates.Len(), dir)
	if effect == review.Exhausted {
		c.append(newMessage(AuthorBot, Completion, c.now()))
	}

	return effect
}

// Undo reverts the most recent rejection within its window.
func (c *Controller) Undo() bool {
	_, ok := c.machine.Undo()
	return ok
}

// ClearShortlist empties the shortlist without touching decisions.
func (c *Controller) ClearShortlist() {
	c.machine.ClearShortlist()
}

// NewConversation archives the current conversation (when it holds more
// than the greeting) and resets to a fresh greeting. Cursors, decisions and
// the session id are discarded; the shortlist and prior history survive.
func (c *Controller) NewConversation() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.messages) > 1 {
		item := &HistoryItem{
			ID:           uuid.NewString(),
			Title:        historyTitle(c.messages),
			LastMessage:  c.messages[len(c.messages)-1].Text,
			MessageCount: len(c.messages),
			CreatedAt:    c.now(),
		}
		c.history = append([]*HistoryItem{item}, c.history...)
	}

	c.messages = []*Message{newMessage(AuthorBot, Greeting, c.now())}
	c.sessionID = ""
	c.machine.Reset()
}

// LoadHistory switches the active session to an archived conversation.
// Messages of archived conversations are not kept.
func (c *Controller) LoadHistory(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range c.history {
		if item.ID == id {
			c.sessionID = item.ID
			return true
		}
	}

	return false
}

func historyTitle(messages []*Message) string {
	for _, msg := range messages {
		if msg.Author == AuthorUser {
			return util.TruncateForLog(msg.Text, historyTitleLimit)
		}
	}

	return "New Conversation"
}
