// Package gateway is the HTTP client for the matching backend. It owns the
// retry budget: callers either get a usable payload or a final error after
// the budget is spent.
package gateway

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAPIURL = "http://localhost:8000"
	userAgent     = "hirepal/cli"

	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
)

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	MaxRetries int
	RetryDelay time.Duration
}

func New(logger *zap.Logger) *Client {
	return &Client{
		logger: logger,
		APIURL: defaultAPIURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent:  userAgent,
		MaxRetries: defaultMaxRetries,
		RetryDelay: defaultRetryDelay,
	}
}

// waitFor sleeps for d unless the context is canceled first.
func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
