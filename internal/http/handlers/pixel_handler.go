// Pixel HTTP handlers.
//
// This file exposes REST endpoints for canvas cells:
//   - POST   /pixels            (place one pixel)
//   - GET    /pixels            (full snapshot, ETag support)
//   - GET    /pixels/{x}/{y}    (single cell with placer)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eureka-dev/go-place-backend/internal/domain"
	"github.com/eureka-dev/go-place-backend/internal/services"
	"github.com/eureka-dev/go-place-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// PlaceService defines the placement pipeline consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PlaceService interface {
	// Place validates and commits one placement for the given identity.
	Place(ctx context.Context, req services.PlacementRequest, auth services.AuthContext) (*domain.Pixel, error)
	// Remaining reports the user's outstanding cooldown wait, 0 when eligible.
	Remaining(ctx context.Context, userID string, now time.Time) (time.Duration, error)
}

// GridService defines canvas read operations consumed by HTTP handlers.
type GridService interface {
	// Snapshot returns every painted cell.
	Snapshot(ctx context.Context) ([]domain.Pixel, error)
	// Get returns one cell joined with its placer.
	Get(ctx context.Context, x, y int) (*domain.Pixel, error)
	// Placer returns one user's profile.
	Placer(ctx context.Context, userID string) (*domain.User, error)
	// Stats returns (painted count, max placed_at) for ETag generation.
	Stats(ctx context.Context) (int64, int64, error)
	// HistoryPage returns a page of the audit trail and the total count.
	HistoryPage(ctx context.Context, page, pageSize int) ([]domain.PixelHistory, int64, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for pixels, history, and cooldown.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	placeSvc PlaceService
	gridSvc  GridService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(placeSvc PlaceService, gridSvc GridService) *Handlers {
	return &Handlers{placeSvc: placeSvc, gridSvc: gridSvc}
}

// userID extracts the authenticated user id from Gin context (set by the
// session middleware). It returns "" for anonymous requests; anonymous
// handling is the placement service's call, not the transport's.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

//
// DTOs
//

// PlacePixelRequest is the JSON payload for placing a pixel. The body may
// also be a one-element JSON array wrapping this object; some client
// mutation frameworks frame single-argument calls that way.
type PlacePixelRequest struct {
	// ID optionally carries the cell key "{x}_{y}"; recomputed server-side.
	ID string `json:"id" example:"5_5"`
	// X is the zero-based column.
	X *int `json:"x" example:"5"`
	// Y is the zero-based row.
	Y *int `json:"y" example:"5"`
	// Color is the requested hex color.
	Color string `json:"color" example:"#E50000"`
	// PlacedBy is the client-claimed placer; honored only behind a trusted
	// intermediary (see config).
	PlacedBy string `json:"placedBy,omitempty" example:"user123"`
	// PlacedAt is the client timestamp in epoch ms; informational only.
	PlacedAt int64 `json:"placedAt,omitempty" example:"1756600000000"`
}

// decodePlaceBody parses the request body into a PlacePixelRequest,
// accepting either a bare object or a one-element array of objects.
func decodePlaceBody(c *gin.Context) (*PlacePixelRequest, error) {
	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []PlacePixelRequest
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		if len(list) != 1 {
			return nil, errors.New("array body must contain exactly one placement")
		}
		return &list[0], nil
	}
	var req PlacePixelRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// GridResponse wraps the full canvas snapshot.
type GridResponse struct {
	Pixels []domain.Pixel `json:"pixels"`
	Count  int            `json:"count"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 50
		maxPageSize     = 200
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// PlacePixel godoc
// @ID          placePixel
// @Summary     Place a pixel
// @Description Validates and commits one placement for the authenticated user, subject to the per-user cooldown.
// @Tags        Pixels
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.PlacePixelRequest  true  "Placement payload (object or one-element array)"
//
// @Success     201  {object}  domain.Pixel
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "No verified identity"
// @Failure     429  {object}  handlers.ErrorResponse  "Cooldown active"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /pixels [post]
func (h *Handlers) PlacePixel(c *gin.Context) {
	req, err := decodePlaceBody(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.X == nil || req.Y == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "x and y are required")
		return
	}

	placement := services.PlacementRequest{
		ID:       req.ID,
		X:        *req.X,
		Y:        *req.Y,
		Color:    strings.TrimSpace(req.Color),
		PlacedBy: strings.TrimSpace(req.PlacedBy),
		PlacedAt: req.PlacedAt,
	}

	pixel, err := h.placeSvc.Place(c.Request.Context(), placement, services.AuthContext{UserID: userID(c)})
	if err != nil {
		var cd *services.CooldownError
		switch {
		case errors.As(err, &cd):
			failCooldown(c, cd.Error(), cd.RemainingMillis())
		case errors.Is(err, services.ErrOutOfBounds):
			fail(c, http.StatusBadRequest, ErrCodeOutOfBounds, err.Error())
		case errors.Is(err, services.ErrInvalidColor):
			fail(c, http.StatusBadRequest, ErrCodeInvalidColor, err.Error())
		case errors.Is(err, services.ErrAuthRequired):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodePlaceFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, pixel)
}

// GetGrid godoc
// @ID          getGrid
// @Summary     Full canvas snapshot
// @Description Returns every painted cell. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Pixels
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"grid:42:1756600000000\")
//
// @Success     200  {object} handlers.GridResponse
// @Header      200  {string} ETag "Weak ETag for current canvas state"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pixels [get]
func (h *Handlers) GetGrid(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if count, maxAt, err := h.gridSvc.Stats(ctx); err == nil {
		etag := fmt.Sprintf(`W/"grid:%d:%d"`, count, maxAt)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	pixels, err := h.gridSvc.Snapshot(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, GridResponse{Pixels: pixels, Count: len(pixels)})
}

// GetPixel godoc
// @ID          getPixel
// @Summary     Single cell lookup
// @Description Returns one cell joined with the placer's public profile, or 404 when never painted.
// @Tags        Pixels
// @Produce     json
//
// @Param       x  path  int  true  "Column"  minimum(0)
// @Param       y  path  int  true  "Row"     minimum(0)
//
// @Success     200  {object} domain.Pixel
// @Failure     400  {object} handlers.ErrorResponse "Bad coordinates"
// @Failure     404  {object} handlers.ErrorResponse "Cell never painted"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pixels/{x}/{y} [get]
func (h *Handlers) GetPixel(c *gin.Context) {
	x, okX := utils.Atoi(c.Param("x"))
	y, okY := utils.Atoi(c.Param("y"))
	if !okX || !okY {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "coordinates must be integers")
		return
	}

	pixel, err := h.gridSvc.Get(c.Request.Context(), x, y)
	if err != nil {
		if errors.Is(err, services.ErrPixelNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "pixel not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, pixel)
}
