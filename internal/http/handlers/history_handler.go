// History HTTP handlers.
//
// This file exposes the placement audit trail:
//   - GET /history    (paginated, newest first)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eureka-dev/go-place-backend/internal/domain"
)

// ListHistoryResponse wraps a page of history entries and pagination
// information.
type ListHistoryResponse struct {
	History    []domain.PixelHistory `json:"history"`
	Pagination Pagination            `json:"pagination"`
}

// ListHistory godoc
// @ID          listHistory
// @Summary     Placement history (paginated)
// @Description Returns a page of the append-only placement log, newest first.
// @Tags        History
// @Produce     json
//
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(200) default(50)
//
// @Success     200  {object} handlers.ListHistoryResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /history [get]
func (h *Handlers) ListHistory(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.gridSvc.HistoryPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := ListHistoryResponse{
		History: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}
