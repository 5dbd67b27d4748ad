// Package integrations holds clients for the third-party HTTP providers:
// SendGrid mail, Cloudflare Images and Dynamic Mockups.
package integrations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

const maxErrorBody = 4 << 10

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, e.Body)
}

func newStatusError(provider string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Provider: provider, Status: resp.StatusCode, Body: string(body)}
}

// isTimeout reports whether err is a client or context deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
