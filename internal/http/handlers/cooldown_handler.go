// Cooldown HTTP handlers.
//
// This file exposes the read side of the cooldown tracker:
//   - GET /cooldown    (current user's remaining wait)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CooldownResponse reports the remaining wait before the current user may
// place again. RemainingMs is 0 when the user is eligible now.
type CooldownResponse struct {
	RemainingMs int64 `json:"remaining_ms" example:"10000"`
	// Eligible is RemainingMs == 0, precomputed for client convenience.
	Eligible bool `json:"eligible" example:"false"`
}

// GetCooldown godoc
// @ID          getCooldown
// @Summary     Remaining placement cooldown
// @Description Returns how long the authenticated user must wait before the next placement.
// @Tags        Cooldown
// @Produce     json
//
// @Success     200  {object} handlers.CooldownResponse
// @Failure     401  {object} handlers.ErrorResponse "No verified identity"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cooldown [get]
func (h *Handlers) GetCooldown(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "sign in to place pixels")
		return
	}

	remaining, err := h.placeSvc.Remaining(c.Request.Context(), uid, time.Now())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, CooldownResponse{
		RemainingMs: remaining.Milliseconds(),
		Eligible:    remaining == 0,
	})
}
