// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints,
// including structured error envelopes, consistent JSON serialization, and
// helpers for common HTTP patterns. The goal is to guarantee uniform responses
// for both success and failure cases, making the API predictable and
// machine-friendly.
//
// Conventions:
//   - All error responses must return an ErrorResponse with a stable `code`.
//   - `fail()` centralizes error logging and formatting, ensuring 5xx responses
//     are logged with request context for observability.
//   - Cooldown rejections carry the machine-readable remaining wait so clients
//     can start a countdown without parsing the message.
//   - `ok()` simplifies writing success responses in a consistent shape
//     across handlers.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eureka-dev/go-place-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// Fields:
//   - RequestID: Optional correlation ID, echoed from X-Request-ID header, used
//     to correlate server logs with client-side errors.
//   - Code: A stable, machine-readable string (see errors.go constants).
//   - Message: A human-readable error description, safe for display to users.
//   - RetryAfterMs: Present only on cooldown rejections; remaining wait in
//     milliseconds before the next placement is allowed.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"cooldown_active"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"placement cooldown active: retry in 10s"`
	// Remaining cooldown wait in ms (cooldown rejections only)
	RetryAfterMs int64 `json:"retry_after_ms,omitempty" example:"10000"`
}

// fail aborts the request with a structured error and logs server-side errors.
//
// It constructs an ErrorResponse, writes it as JSON with the given HTTP status,
// and calls gin.Context.AbortWithStatusJSON to stop further processing.
//
// Server errors (>=500) are logged using the request-scoped logger from middleware.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failCooldown writes a 429 cooldown rejection carrying the remaining wait
// both as a Retry-After header (whole seconds, ceiling) and as
// retry_after_ms in the envelope.
func failCooldown(c *gin.Context, msg string, remainingMs int64) {
	secs := (remainingMs + 999) / 1000
	c.Header("Retry-After", strconv.FormatInt(secs, 10))
	resp := ErrorResponse{
		RequestID:    c.Writer.Header().Get("X-Request-ID"),
		Code:         ErrCodeCooldownActive,
		Message:      msg,
		RetryAfterMs: remainingMs,
	}
	c.AbortWithStatusJSON(http.StatusTooManyRequests, resp)
}

// ok writes a success JSON response.
//
// It serializes `body` as JSON with the given HTTP status code.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
