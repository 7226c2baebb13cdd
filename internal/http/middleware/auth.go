// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's identity. Sessions live in a database
// table owned by the auth provider; the canvas only reads it. The resolved
// user id is stored in the Gin context under "userID" and picked up by
// handlers, the access logger, and the rate limiter key function.
//
// Resolution order:
//  1. Session cookie ("place_session"), verified against the sessions table
//     with its expiry. A bad or expired token leaves the request anonymous
//     rather than failing it: read endpoints are public.
//  2. X-User-ID header, only when trustHeader is enabled. Meant for local
//     development and tests, never for an internet-facing deployment.
//
// Anonymous requests pass through with no "userID" set; whether anonymity
// is acceptable is decided per operation by the services.
package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eureka-dev/go-place-backend/internal/repo"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "place_session"

// SessionAuth returns a middleware that resolves the session cookie into a
// user id. When trustHeader is true an X-User-ID header is accepted as a
// fallback identity for requests without a valid session.
func SessionAuth(db *gorm.DB, trustHeader bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
			uid, err := repo.GetSessionUser(c.Request.Context(), db, token, time.Now())
			if err == nil && uid != "" {
				c.Set("userID", uid)
				c.Next()
				return
			}
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				lg := LoggerFrom(c)
				lg.Error().Err(err).Msg("session lookup failed")
			}
		}

		if trustHeader {
			if uid := c.GetHeader("X-User-ID"); uid != "" {
				c.Set("userID", uid)
			}
		}
		c.Next()
	}
}
