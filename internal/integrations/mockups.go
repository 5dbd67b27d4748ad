package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"fashionai/internal/models"
	"fashionai/internal/observability"
)

const (
	defaultMockupTimeout  = 60 * time.Second
	defaultMockupDelay    = 2 * time.Second
	defaultMockupAttempts = 3
)

// MockupRenderer renders a product mockup from a provider-specific JSON request.
type MockupRenderer interface {
	Render(ctx context.Context, request json.RawMessage) (json.RawMessage, error)
}

// DynamicMockups calls the Dynamic Mockups renders endpoint with retries.
type DynamicMockups struct {
	apiKey   string
	endpoint string
	client   *http.Client
	delay    time.Duration
	attempts uint
}

// MockupOption configures a DynamicMockups client.
type MockupOption func(*DynamicMockups)

// WithRetryDelay overrides the fixed delay between attempts.
func WithRetryDelay(d time.Duration) MockupOption {
	return func(m *DynamicMockups) { m.delay = d }
}

// WithHTTPTimeout overrides the per-attempt HTTP client timeout.
func WithHTTPTimeout(d time.Duration) MockupOption {
	return func(m *DynamicMockups) { m.client.Timeout = d }
}

func NewDynamicMockups(apiKey, endpoint string, opts ...MockupOption) *DynamicMockups {
	m := &DynamicMockups{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultMockupTimeout},
		delay:    defaultMockupDelay,
		attempts: defaultMockupAttempts,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *DynamicMockups) Render(ctx context.Context, request json.RawMessage) (out json.RawMessage, err error) {
	start := time.Now()
	ctx, span := observability.StartClientSpan(ctx, "dynamic_mockups", "renders.create")
	defer func() {
		observability.ObserveUpstream("dynamic_mockups", start, err)
		observability.EndSpan(span, err)
	}()

	if m.apiKey == "" {
		return nil, &models.AppError{
			Code:    models.CodeInternal,
			Message: "Dynamic Mockups API key not found",
		}
	}
	if len(request) == 0 || !json.Valid(request) {
		return nil, models.NewValidationError("Request body must be valid JSON")
	}

	operation := func() (json.RawMessage, error) {
		return m.renderOnce(ctx, request)
	}

	out, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(m.delay)),
		backoff.WithMaxTries(m.attempts),
	)
	if err != nil {
		return nil, mapMockupError(err)
	}
	return out, nil
}

func (m *DynamicMockups) renderOnce(ctx context.Context, request json.RawMessage) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(request))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("x-api-key", m.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Every non-2xx status is retried; the last one is reported.
	if resp.StatusCode >= 300 {
		return nil, newStatusError("Dynamic Mockups", resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, backoff.Permanent(fmt.Errorf("dynamic mockups returned invalid JSON"))
	}
	return json.RawMessage(body), nil
}

func mapMockupError(err error) error {
	var statusErr *StatusError
	switch {
	case isTimeout(err):
		return &models.AppError{
			Code:    models.CodeUpstreamTimeout,
			Message: "Request to Dynamic Mockups timed out after retries",
			Err:     err,
		}
	case errors.As(err, &statusErr):
		return models.NewUpstreamError(statusErr.Status, fmt.Sprintf("Dynamic Mockups error: %s", statusErr.Body), err)
	default:
		return models.NewInternalError(err)
	}
}
