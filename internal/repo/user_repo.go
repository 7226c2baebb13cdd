// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read access to the auth-owned users
// and sessions tables. The canvas never mutates either table; UpsertUser
// exists only for dev seeding and tests.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/eureka-dev/go-place-backend/internal/domain"
)

// GetUser fetches a user by id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertUser creates or updates a user row. Test/seed helper; production
// rows come from the auth provider.
func UpsertUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Save(u).Error
}

// GetSessionUser resolves a session token into the owning user id. Expired
// or unknown tokens return ErrNotFound.
func GetSessionUser(ctx context.Context, db *gorm.DB, token string, now time.Time) (string, error) {
	if token == "" {
		return "", ErrNotFound
	}
	var s domain.Session
	err := db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, now).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return s.UserID, nil
}
