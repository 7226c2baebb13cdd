// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Pixel
// model, the current-state table of the canvas.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a pixel is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Write semantics:
//   - UpsertPixel is the single write path. It inserts the row on first
//     placement and otherwise overwrites color/placer/timestamp in place,
//     last-write-wins keyed by the deterministic "{x}_{y}" id. The update is
//     conditional on excluded.placed_at >= pixels.placed_at, so a stale
//     retry can never regress a newer commit's timestamp.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/eureka-dev/go-place-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// UpsertPixel writes the authoritative state for one cell. Re-running the
// same placement is a no-op on current state (the id is the idempotency
// key); a placement carrying an older placed_at than the stored row leaves
// the row untouched.
func UpsertPixel(ctx context.Context, db *gorm.DB, p *domain.Pixel) error {
	return db.WithContext(ctx).Exec(`
		INSERT INTO pixels (id, x, y, color, placed_by, placed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			color = excluded.color,
			placed_by = excluded.placed_by,
			placed_at = excluded.placed_at
		WHERE excluded.placed_at >= pixels.placed_at`,
		p.ID, p.X, p.Y, p.Color, p.PlacedBy, p.PlacedAt,
	).Error
}

// GetPixel fetches a single cell by coordinate, joined with its placer for
// display. Returns ErrNotFound when the cell has never been painted.
func GetPixel(ctx context.Context, db *gorm.DB, x, y int) (*domain.Pixel, error) {
	var p domain.Pixel
	err := db.WithContext(ctx).
		Preload("User").
		Where("x = ? AND y = ?", x, y).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPixels returns the full canvas snapshot ordered deterministically
// (y, then x). An unpainted canvas yields an empty slice.
func ListPixels(ctx context.Context, db *gorm.DB) ([]domain.Pixel, error) {
	var out []domain.Pixel
	err := db.WithContext(ctx).
		Order("y ASC, x ASC").
		Find(&out).Error
	return out, err
}

// PixelStats returns aggregate metadata for the pixel table: total painted
// cells and the greatest placed_at among them. Used for weak ETag
// generation on the snapshot endpoint. When the canvas is empty the count
// is 0 and maxPlacedAt is 0.
func PixelStats(ctx context.Context, db *gorm.DB) (count int64, maxPlacedAt int64, err error) {
	q := db.WithContext(ctx).Model(&domain.Pixel{})

	if err = q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var row struct {
		PlacedAt int64
	}
	if err = q.Select("placed_at").Order("placed_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.PlacedAt, nil
}
