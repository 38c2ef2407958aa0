package gateway

import (
	"context"
	"net/http"

	"github.com/mitchellh/mapstructure"

	"github.com/hirepal/hirepal/internal/candidate"
)

const askPath = "/ask"

// Payload type discriminators used by the backend.
const (
	PayloadError      = "error"
	PayloadCandidates = "candidates"
)

type askRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// Payload is the backend's answer to a question. Type selects which fields
// are meaningful: error carries Content, candidates carries Reply plus
// Candidates, anything else is free text in Reply or Content.
type Payload struct {
	Type       string           `json:"type"`
	Reply      string           `json:"reply"`
	Content    string           `json:"content"`
	Candidates []*candidate.Raw `json:"candidates"`
}

// Ask sends a user question for the session and returns the typed payload.
func (c *Client) Ask(ctx context.Context, sessionID, question string) (*Payload, error) {
	req := &askRequest{SessionID: sessionID, Question: question}

	// The backend's answer shape varies by type, so decode loosely first
	// and map the known fields afterwards.
	var raw map[string]any
	if err := c.doJSON(ctx, http.MethodPost, askPath, req, &raw); err != nil {
		return nil, err
	}

	var payload Payload
	cfg := &mapstructure.DecoderConfig{
		Result:  &payload,
		TagName: "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	return &payload, nil
}
