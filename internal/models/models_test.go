package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), http.StatusBadRequest},
		{"conflict", NewConflictError("dup"), http.StatusConflict},
		{"already favorited", NewAlreadyFavoritedError(nil), http.StatusConflict},
		{"auth failed", NewAuthenticationFailedError(), http.StatusUnauthorized},
		{"unauthorized", NewUnauthorizedError("no"), http.StatusUnauthorized},
		{"bad code", NewInvalidVerificationCodeError(), http.StatusBadRequest},
		{"not found", NewNotFoundError("Product", 1), http.StatusNotFound},
		{"upstream with status", NewUpstreamError(422, "bad render", nil), 422},
		{"upstream without status", NewUpstreamError(0, "down", nil), http.StatusBadGateway},
		{"upstream timeout", NewUpstreamTimeoutError(nil), http.StatusGatewayTimeout},
		{"wrapped", fmt.Errorf("ctx: %w", NewNotFoundError("User", 2)), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "bob", User{Username: "bob", Email: "x@y.z"}.DisplayName())
	assert.Equal(t, "alice", User{Email: "alice@example.com"}.DisplayName())
}

func TestNewProductOut(t *testing.T) {
	p := Product{ID: 7, User: &User{Username: "maker"}}
	out := NewProductOut(p, true)
	assert.Equal(t, "maker", out.CreatorName)
	assert.True(t, out.Liked)
	assert.Equal(t, uint(7), out.ID)
}
