package models

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeValidation              = "VALIDATION_ERROR"
	CodeConflict                = "CONFLICT"
	CodeAlreadyFavorited        = "ALREADY_FAVORITED"
	CodeAuthenticationFailed    = "AUTHENTICATION_FAILED"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeInvalidVerificationCode = "INVALID_VERIFICATION_CODE"
	CodeNotFound                = "NOT_FOUND"
	CodeUpstream                = "UPSTREAM_ERROR"
	CodeUpstreamTimeout         = "UPSTREAM_TIMEOUT"
	CodeRateLimited             = "RATE_LIMITED"
	CodeInternal                = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// AppError represents a custom application error.
// Status is only set for upstream errors that carry the provider's HTTP status.
type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// AsAppError returns the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an *AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewAlreadyFavoritedError(err error) *AppError {
	return &AppError{
		Code:    CodeAlreadyFavorited,
		Message: "You have already liked this product",
		Err:     err,
	}
}

func NewAuthenticationFailedError() *AppError {
	return &AppError{
		Code:    CodeAuthenticationFailed,
		Message: "Incorrect email or password",
	}
}

func NewInvalidVerificationCodeError() *AppError {
	return &AppError{
		Code:    CodeInvalidVerificationCode,
		Message: "Invalid or expired verification code",
	}
}

// NewUpstreamError wraps a failed third-party call. A zero status maps to 502.
func NewUpstreamError(status int, message string, err error) *AppError {
	return &AppError{
		Code:    CodeUpstream,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NewUpstreamTimeoutError(err error) *AppError {
	return &AppError{
		Code:    CodeUpstreamTimeout,
		Message: "Upstream request timed out",
		Err:     err,
	}
}

func NewRateLimitedError() *AppError {
	return &AppError{
		Code:    CodeRateLimited,
		Message: "Too many requests",
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	appErr, ok := AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeValidation, CodeInvalidVerificationCode:
		return http.StatusBadRequest
	case CodeConflict, CodeAlreadyFavorited:
		return http.StatusConflict
	case CodeAuthenticationFailed, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case CodeUpstream:
		if appErr.Status >= 400 && appErr.Status <= 599 {
			return appErr.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response.
// Wrapped causes are never sent to the client.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	response := ErrorResponse{Error: "Internal server error", Code: CodeInternal}

	if appErr, ok := AsAppError(err); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
	} else if status < http.StatusInternalServerError {
		response = ErrorResponse{Error: err.Error()}
	}

	return c.Status(status).JSON(response)
}
