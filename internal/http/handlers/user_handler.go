// Identity HTTP handlers.
//
// This file exposes the current caller's identity:
//   - GET /me    (profile of the signed-in user)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eureka-dev/go-place-backend/internal/services"
)

// MeResponse is the signed-in caller's profile.
type MeResponse struct {
	ID   string `json:"id" example:"u-42"`
	Name string `json:"name" example:"artist"`
}

// Me godoc
// @ID          getMe
// @Summary     Current user
// @Description Returns the profile of the authenticated user.
// @Tags        Users
// @Produce     json
//
// @Success     200  {object} handlers.MeResponse
// @Failure     401  {object} handlers.ErrorResponse "No verified identity"
// @Failure     404  {object} handlers.ErrorResponse "Session user has no profile row"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /me [get]
func (h *Handlers) Me(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "sign in to place pixels")
		return
	}

	u, err := h.gridSvc.Placer(c.Request.Context(), uid)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, MeResponse{ID: u.ID, Name: u.Name})
	}
}
