// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// PixelHistory model, the append-only audit trail of accepted placements.
//
// History rows are never updated or deleted. A placement that is
// immediately overpainted still keeps its history entry; the table records
// what was accepted, not what is currently visible.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eureka-dev/go-place-backend/internal/domain"
)

// AppendHistory inserts one immutable history entry for an accepted
// placement. The entry id is a randomly generated UUID.
func AppendHistory(ctx context.Context, db *gorm.DB, p *domain.Pixel) (*domain.PixelHistory, error) {
	h := &domain.PixelHistory{
		ID:        uuid.NewString(),
		X:         p.X,
		Y:         p.Y,
		Color:     p.Color,
		PlacedBy:  p.PlacedBy,
		PlacedAt:  p.PlacedAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

// CountHistory returns the total number of history entries.
// A raw COUNT is used so a missing table surfaces as an error.
func CountHistory(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM pixel_history").Scan(&total).Error
	return total, err
}

// ListHistoryPage returns a page of history entries, newest first
// (PlacedAt DESC, ID DESC for a stable order among same-millisecond rows).
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListHistoryPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.PixelHistory, error) {
	var out []domain.PixelHistory
	err := db.WithContext(ctx).
		Order("placed_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListHistoryByCoord returns every accepted placement for one cell, oldest
// first. This is the cell's full paint record.
func ListHistoryByCoord(ctx context.Context, db *gorm.DB, x, y int) ([]domain.PixelHistory, error) {
	var out []domain.PixelHistory
	err := db.WithContext(ctx).
		Where("x = ? AND y = ?", x, y).
		Order("placed_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
