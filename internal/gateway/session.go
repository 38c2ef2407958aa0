package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const sessionPath = "/new_session"

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// CreateSession asks the backend for a fresh session identifier, retrying
// within the client's budget. The caller decides what to do when the budget
// is spent.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var resp sessionResponse
	if err := c.doJSON(ctx, http.MethodGet, sessionPath, nil, &resp); err != nil {
		return "", err
	}

	id := strings.TrimSpace(resp.SessionID)
	if id == "" {
		return "", errors.New("backend returned an empty session id")
	}

	return id, nil
}
