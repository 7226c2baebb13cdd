// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Cooldown
// model, the per-user rate-limit state that gates placements.
//
// The interesting function is ClaimCooldown: a transactionally-enforced
// compare-and-set. "Check elapsed >= cooldown, else fail" and "record new
// placement time" happen in one statement, so two concurrent requests from
// the same user can never both pass the check: the database serializes
// them and exactly one claim wins.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/eureka-dev/go-place-backend/internal/domain"
)

// GetCooldown returns the cooldown record for userID, or ErrNotFound when
// the user has never placed a pixel (which means they are immediately
// eligible).
func GetCooldown(ctx context.Context, db *gorm.DB, userID string) (*domain.Cooldown, error) {
	var cd domain.Cooldown
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cd, nil
}

// ClaimCooldown atomically records a placement at nowMs for userID if and
// only if at least cooldownMs have elapsed since the user's last accepted
// placement (boundary inclusive; a missing record always claims).
//
// Returns (true, nil) when the claim succeeded and (false, nil) when the
// cooldown is still active. The caller reads the record afterwards to
// compute the remaining wait.
func ClaimCooldown(ctx context.Context, db *gorm.DB, userID string, nowMs, cooldownMs int64) (bool, error) {
	res := db.WithContext(ctx).Exec(`
		INSERT INTO cooldowns (user_id, last_placed_at, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			last_placed_at = excluded.last_placed_at,
			updated_at = CURRENT_TIMESTAMP
		WHERE excluded.last_placed_at - cooldowns.last_placed_at >= ?`,
		userID, nowMs, cooldownMs,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ElapsedSince returns milliseconds since the user's last accepted
// placement at nowMs. A user with no record is reported as eligible via
// (elapsed = cooldown horizon) using a negative sentinel: callers receive
// ok=false when no record exists.
func ElapsedSince(ctx context.Context, db *gorm.DB, userID string, nowMs int64) (elapsed int64, ok bool, err error) {
	cd, err := GetCooldown(ctx, db, userID)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return nowMs - cd.LastPlacedAt, true, nil
}
