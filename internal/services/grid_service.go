// Package services – GridService
//
// This file implements the GridService, the read-query side of the canvas:
// full snapshots for initial load, single-cell lookups joined with placer
// identity, aggregate stats for conditional responses, and paginated
// history.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/eureka-dev/go-place-backend/internal/domain"
	"github.com/eureka-dev/go-place-backend/internal/repo"
)

// GridService provides read access to current canvas state and history.
type GridService struct {
	// DB is the GORM handle used for all reads.
	DB *gorm.DB
}

// NewGridService constructs a GridService bound to db.
func NewGridService(db *gorm.DB) *GridService {
	return &GridService{DB: db}
}

// Snapshot returns every painted cell, the initial canvas load for a new
// subscriber. An unpainted canvas yields an empty slice, never nil data
// errors.
func (s *GridService) Snapshot(ctx context.Context) ([]domain.Pixel, error) {
	return repo.ListPixels(ctx, s.DB)
}

// Get returns one cell joined with its placer, or ErrPixelNotFound when
// the cell has never been painted.
func (s *GridService) Get(ctx context.Context, x, y int) (*domain.Pixel, error) {
	p, err := repo.GetPixel(ctx, s.DB, x, y)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPixelNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Placer returns the profile of one user, or ErrUserNotFound. Serves the
// endpoint a signed-in client uses to show who it is placing as.
func (s *GridService) Placer(ctx context.Context, userID string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Stats returns (painted cell count, max placed_at) for weak ETag
// generation on the snapshot endpoint.
func (s *GridService) Stats(ctx context.Context) (int64, int64, error) {
	return repo.PixelStats(ctx, s.DB)
}

// HistoryPage returns a page of the placement audit trail, newest first,
// with the total count for pagination metadata. Invalid page/pageSize fall
// back to defaults.
func (s *GridService) HistoryPage(ctx context.Context, page, pageSize int) ([]domain.PixelHistory, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountHistory(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.PixelHistory{}, 0, nil
	}

	items, err := repo.ListHistoryPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}
