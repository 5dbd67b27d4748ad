package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fashionai/internal/models"
	"fashionai/internal/observability"
)

const sendgridMailEndpoint = "https://api.sendgrid.com/v3/mail/send"

// Mailer delivers verification codes.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

// SendGridMailer sends plain-text mail through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey    string
	fromEmail string
	endpoint  string
	client    *http.Client
}

// NewSendGridMailer creates a SendGridMailer. endpoint may be empty for the public API.
func NewSendGridMailer(apiKey, fromEmail, endpoint string) *SendGridMailer {
	if endpoint == "" {
		endpoint = sendgridMailEndpoint
	}
	return &SendGridMailer{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *SendGridMailer) SendVerificationCode(ctx context.Context, to, code string) (err error) {
	start := time.Now()
	ctx, span := observability.StartClientSpan(ctx, "sendgrid", "mail.send")
	defer func() {
		observability.ObserveUpstream("sendgrid", start, err)
		observability.EndSpan(span, err)
	}()

	if m.apiKey == "" || m.fromEmail == "" {
		return models.NewInternalError(fmt.Errorf("SendGrid is not configured"))
	}

	payload := sgMailPayload{
		Personalizations: []sgPersonalization{{
			To: []sgAddress{{Email: to}},
		}},
		From:    sgAddress{Email: m.fromEmail},
		Subject: "Your Verification Code",
		Content: []sgContent{{Type: "text/plain", Value: "Your verification code is: " + code}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("failed to marshal SendGrid payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return models.NewInternalError(fmt.Errorf("failed to create SendGrid request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return models.NewUpstreamTimeoutError(err)
		}
		return models.NewUpstreamError(0, "Failed to send verification email", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return models.NewUpstreamError(resp.StatusCode, "Failed to send verification email", newStatusError("SendGrid", resp))
	}
	return nil
}

// SendGrid v3 Mail Send API payload types.
type sgMailPayload struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
