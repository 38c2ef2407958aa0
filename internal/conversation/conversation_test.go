package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hirepal/hirepal/internal/candidate"
	"github.com/hirepal/hirepal/internal/gateway"
	"github.com/hirepal/hirepal/internal/review"
)

// fakeGateway replays scripted payloads and records the questions it saw.
type fakeGateway struct {
	sessionID  string
	sessionErr error
	payloads   []*gateway.Payload
	askErr     error
	questions  []string
}

func (g *fakeGateway) CreateSession(context.Context) (string, error) {
	if g.sessionErr != nil {
		return "", g.sessionErr
	}
	if g.sessionID == "" {
		return "session-1", nil
	}
	return g.sessionID, nil
}

func (g *fakeGateway) Ask(_ context.Context, _, question string) (*gateway.Payload, error) {
	g.questions = append(g.questions, question)
	if g.askErr != nil {
		return nil, g.askErr
	}

	payload := g.payloads[0]
	if len(g.payloads) > 1 {
		g.payloads = g.payloads[1:]
	}
	return payload, nil
}

func newController(gw Gateway) *Controller {
	return New(gw, review.New(time.Hour, nil), zap.NewNop())
}

func TestControllerStartsWithGreeting(t *testing.T) {
	t.Parallel()

	ctrl := newController(&fakeGateway{})

	messages := ctrl.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected a single greeting, got %d messages", len(messages))
	}
	if messages[0].Author != AuthorBot || messages[0].Text != Greeting {
		t.Fatalf("unexpected greeting message: %+v", messages[0])
	}
}

func TestSubmitEmptyUtteranceIsNoop(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	ctrl := newController(gw)

	ctrl.Submit(context.Background(), "   \t  ")

	if len(ctrl.Messages()) != 1 {
		t.Fatalf("expected no messages appended, got %d", len(ctrl.Messages()))
	}
	if len(gw.questions) != 0 {
		t.Fatalf("gateway must not be called for empty input")
	}
}

func TestSubmitErrorPayloadSurfacedVerbatim(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{payloads: []*gateway.Payload{{
		Type:    gateway.PayloadError,
		Content: "An error occurred: index unavailable",
	}}}
	ctrl := newController(gw)

	ctrl.Submit(context.Background(), "find someone")

	messages := ctrl.Messages()
	last := messages[len(messages)-1]
	if last.Author != AuthorBot || last.Text != "An error occurred: index unavailable" {
		t.Fatalf("expected backend error verbatim, got %+v", last)
	}
	if last.HasCandidates() {
		t.Fatalf("error messages must not carry candidates")
	}
}

func TestSubmitCandidatesPayload(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{payloads: []*gateway.Payload{{
		Type:  gateway.PayloadCandidates,
		Reply: "Here are two matches.",
		Candidates: []*candidate.Raw{
			{Name: "Ada Lovelace", RelevantContent: "A backend developer. Knows Python.", CVLink: "https://cv/ada.pdf"},
			{Name: "Grace Hopper", RelevantContent: "A compiler engineer.", CVLink: "https://cv/grace.pdf"},
		},
	}}}
	ctrl := newController(gw)

	ctrl.Submit(context.Background(), "Find me a backend engineer")

	messages := ctrl.Messages()
	if len(messages) != 3 {
		t.Fatalf("expected greeting + user + bot, got %d", len(messages))
	}

	bot := messages[2]
	if bot.Text != "Here are two matches." {
		t.Fatalf("unexpected reply text: %q", bot.Text)
	}
	if !bot.HasCandidates() || bot.Candidates.Len() != 2 {
		t.Fatalf("expected 2 candidates on the bot message")
	}
	// Order-preserving normalization.
	if bot.Candidates.Items[0].Name != "Ada Lovelace" || bot.Candidates.Items[1].Name != "Grace Hopper" {
		t.Fatalf("candidate order not preserved: %v", bot.Candidates.Names())
	}

	if idx, total := ctrl.CursorPosition(bot.ID); idx != 0 || total != 2 {
		t.Fatalf("expected cursor initialized to 0 of 2, got %d of %d", idx, total)
	}
	if got := ctrl.CurrentCandidate(bot.ID); got == nil || got.Name != "Ada Lovelace" {
		t.Fatalf("expected the first candidate under the cursor")
	}
}

func TestSubmitScenarioRoleAndSkills(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{payloads: []*gateway.Payload{{
		Type: gateway.PayloadCandidates,
		Candidates: []*candidate.Raw{{
			Name:            "Sam Doe",
			RelevantContent: "Worked five years as a backend developer. Strong Python background.",
			CVLink:          "https://cv/sam.pdf",
		}},
	}}}
	ctrl := newController(gw)

	ctrl.Submit(context.Background(), "Find me a backend engineer")

	bot := ctrl.LastMessage()
	if bot.Text != "I found 1 potential candidates for you." {
		t.Fatalf("expected templated default reply, got %q", bot.Text)
	}

	cand := bot.Candidates.Items[0]
	if !strings.Contains(cand.Role, "backend developer") {
		t.Fatalf("expected role to contain %q, got %q", "backend developer", cand.Role)
	}

	hasPython := false
	for _, skill := range cand.Skills {
		if skill == "Python" {
			hasPython = true
		}
	}
	if !hasPython {
		t.Fatalf("expected Python among skills, got %v", cand.Skills)
	}
}

func TestSubmitFreeTextPayload(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{payloads: []*gateway.Payload{{
		Type:  "text",
		Reply: "Could you tell me more about the role?",
	}}}
	ctrl := newController(gw)

	ctrl.Submit(context.Background(), "hello")

	last := ctrl.LastMessage()
	if last.Text != "Could you tell me more about the role?" {
		t.Fatalf("unexpected free-text reply: %q", last.Text)
	}
	if last.HasCandidates() {
		t.Fatalf("free-text replies carry no candidates")
	}
}

func TestSubmitTransportFailureAppendsApology(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{askErr: errors.New("connection refused")}
	ctrl := newController(gw)

	ctrl.Submit(context.Background(), "find someone")

	messages := ctrl.Messages()
	if len(messages) != 3 {
		t.Fatalf("expected exactly one apology appended, got %d messages", len(messages))
	}
	if messages[2].Text != Apology {
		t.Fatalf("expected apology, got %q", messages[2].Text)
	}

	// The controller stays usable afterwards.
	gw.askErr = nil
	gw.payloads = []*gateway.Payload{{Type: "text", Reply: "back online"}}
	ctrl.Submit(context.Background(), "try again")
	if ctrl.LastMessage().Text != "back online" {
		t.Fatalf("controller unusable after transport failure")
	}
}

func TestSessionFallbackAfterCreateFailure(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		sessionErr: errors.New("all attempts failed"),
		payloads:   []*gateway.Payload{{Type: "text", Reply: "ok"}},
	}
	ctrl := newController(gw)

	ctrl.Submit(context.Background(), "hello")

	if !strings.HasPrefix(ctrl.SessionID(), "fallback-") {
		t.Fatalf("expected a locally generated fallback session id, got %q", ctrl.SessionID())
	}
}

func TestDecideExhaustionAppendsCompletion(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{payloads: []*gateway.Payload{{
		Type: gateway.PayloadCandidates,
		Candidates: []*candidate.Raw{
			{Name: "One Person", CVLink: "a"},
			{Name: "Two Person", CVLink: "b"},
		},
	}}}
	ctrl := newController(gw)
	ctrl.Submit(context.Background(), "find")

	msg := ctrl.LastMessage()
	first := msg.Candidates.Items[0]
	second := msg.Candidates.Items[1]

	if effect := ctrl.Decide(first.ID, msg.ID, review.Left); effect != review.Advanced {
		t.Fatalf("expected Advanced, got %v", effect)
	}
	if got := ctrl.CurrentCandidate(msg.ID); got == nil || got.ID != second.ID {
		t.Fatalf("expected cursor on the second candidate")
	}

	if effect := ctrl.Decide(second.ID, msg.ID, review.Left); effect != review.Exhausted {
		t.Fatalf("expected Exhausted, got %v", effect)
	}
	if ctrl.LastMessage().Text != Completion {
		t.Fatalf("expected completion message, got %q", ctrl.LastMessage().Text)
	}
	if ctrl.CurrentCandidate(msg.ID) != nil {
		t.Fatalf("no candidate should be presented after exhaustion")
	}

	// Undo restores the last candidate and the cursor.
	if !ctrl.Undo() {
		t.Fatalf("expected undo to succeed")
	}
	if ctrl.DecisionFor(second.ID) != review.Unset {
		t.Fatalf("expected second candidate back to unset")
	}
	if got := ctrl.CurrentCandidate(msg.ID); got == nil || got.ID != second.ID {
		t.Fatalf("expected cursor back on the second candidate")
	}
}

func TestNewConversationArchivesAndResets(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{payloads: []*gateway.Payload{
		{
			Type: gateway.PayloadCandidates,
			Candidates: []*candidate.Raw{
				{Name: "Keep Me", CVLink: "a"},
			},
		},
		{Type: "text", Reply: "anything else?"},
	}}
	ctrl := newController(gw)

	ctrl.Submit(context.Background(), "Senior software engineer with Go experience")
	msg := ctrl.LastMessage()
	kept := msg.Candidates.Items[0]
	ctrl.Decide(kept.ID, msg.ID, review.Right)
	ctrl.Submit(context.Background(), "thanks")

	// greeting + 2 user + 2 bot + completion
	total := len(ctrl.Messages())
	if total < 5 {
		t.Fatalf("expected a grown conversation, got %d messages", total)
	}

	ctrl.NewConversation()

	history := ctrl.History()
	if len(history) != 1 {
		t.Fatalf("expected exactly one history entry, got %d", len(history))
	}
	item := history[0]
	if item.Title != "Senior software engineer with ..." {
		t.Fatalf("unexpected history title: %q", item.Title)
	}
	if item.MessageCount != total {
		t.Fatalf("expected message count %d, got %d", total, item.MessageCount)
	}

	messages := ctrl.Messages()
	if len(messages) != 1 || messages[0].Text != Greeting {
		t.Fatalf("expected reset to a single greeting")
	}
	if ctrl.SessionID() != "" {
		t.Fatalf("expected session id invalidated")
	}
	if ctrl.DecisionFor(kept.ID) != review.Unset {
		t.Fatalf("expected decisions discarded on reset")
	}
	if ctrl.ShortlistCount() != 1 {
		t.Fatalf("shortlist must survive a new conversation")
	}

	// Most recent first on the next archive.
	ctrl.Submit(context.Background(), "another search")
	ctrl.NewConversation()
	history = ctrl.History()
	if len(history) != 2 || history[1].ID != item.ID {
		t.Fatalf("expected newest history entry prepended")
	}
}

func TestNewConversationWithOnlyGreetingSkipsArchive(t *testing.T) {
	t.Parallel()

	ctrl := newController(&fakeGateway{})

	ctrl.NewConversation()

	if len(ctrl.History()) != 0 {
		t.Fatalf("greeting-only conversations are not archived")
	}
	if len(ctrl.Messages()) != 1 {
		t.Fatalf("expected a fresh greeting only")
	}
}

func TestLoadHistory(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{payloads: []*gateway.Payload{{Type: "text", Reply: "ok"}}}
	ctrl := newController(gw)

	ctrl.Submit(context.Background(), "first conversation")
	ctrl.NewConversation()

	item := ctrl.History()[0]
	if !ctrl.LoadHistory(item.ID) {
		t.Fatalf("expected to load an existing history item")
	}
	if ctrl.SessionID() != item.ID {
		t.Fatalf("expected session switched to the archived conversation")
	}
	if ctrl.LoadHistory("missing") {
		t.Fatalf("loading an unknown id must fail")
	}
}
