// Package services defines the business logic for pixel placement and
// canvas reads. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrOutOfBounds is returned when a placement targets a coordinate
	// outside [0,Width) x [0,Height). Rejected before any state change.
	ErrOutOfBounds = errors.New("coordinate outside canvas bounds")

	// ErrInvalidColor is returned when a placement carries a color that is
	// not a valid hex value (or not in the palette, in strict mode).
	ErrInvalidColor = errors.New("invalid color value")

	// ErrAuthRequired is returned when neither a verified session nor a
	// trusted claimed identity resolves to a concrete user.
	ErrAuthRequired = errors.New("authentication required to place pixels")

	// ErrCooldownActive is the sentinel matched by errors.Is for cooldown
	// rejections. The concrete error is always a *CooldownError carrying
	// the remaining wait.
	ErrCooldownActive = errors.New("placement cooldown active")

	// ErrPixelNotFound indicates that the requested cell has never been
	// painted.
	ErrPixelNotFound = errors.New("pixel not found")

	// ErrUserNotFound indicates that no user row exists for the requested
	// identity.
	ErrUserNotFound = errors.New("user not found")
)

// CooldownError is returned when a placement is rejected because the user's
// cooldown has not elapsed. It matches ErrCooldownActive via errors.Is.
type CooldownError struct {
	// Remaining is the wait until the user becomes eligible again.
	Remaining time.Duration
}

// Error reports the remaining wait ceiling-rounded to whole seconds, which
// is what clients display on their countdown.
func (e *CooldownError) Error() string {
	secs := (e.Remaining + time.Second - 1) / time.Second
	return fmt.Sprintf("placement cooldown active: retry in %ds", secs)
}

// Is lets errors.Is(err, ErrCooldownActive) succeed for *CooldownError.
func (e *CooldownError) Is(target error) bool { return target == ErrCooldownActive }

// RemainingMillis returns the remaining wait in milliseconds, the unit used
// on the wire.
func (e *CooldownError) RemainingMillis() int64 { return e.Remaining.Milliseconds() }
