// Package domain defines the persistence models for the shared pixel canvas:
// users, sessions, current pixel state, the append-only placement history,
// and per-user cooldown records. These types are mapped with GORM and form
// the core data layer of the application.
package domain

import (
	"fmt"
	"time"
)

// User mirrors the subset of the externally-owned auth user table that the
// canvas needs for display joins. Rows are written by the auth provider and
// are read-only here.
//
// Fields:
//   - ID: opaque user identifier (primary key).
//   - Name: display name shown next to a placed pixel.
//   - Email: account email; never exposed in canvas API responses.
type User struct {
	ID        string    `json:"id"    gorm:"type:varchar(64);primaryKey"`
	Name      string    `json:"name"  gorm:"type:varchar(255);not null"`
	Email     string    `json:"-"     gorm:"type:varchar(255);not null;uniqueIndex"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Session is the externally-owned auth session table. The canvas only reads
// it to resolve a session cookie into a user identity; creation, rotation,
// and expiry are the auth provider's concern.
type Session struct {
	ID        string    `json:"id"         gorm:"type:varchar(64);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index"`
	Token     string    `json:"-"          gorm:"type:varchar(255);not null;uniqueIndex"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"-"`

	// User is the session owner.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// Pixel is the current state of one canvas cell. There is at most one live
// row per coordinate: the row is created on the first placement and updated
// in place by every later placement (last-write-wins), never deleted.
//
// Fields:
//   - ID: deterministic key "{x}_{y}"; doubles as the idempotency key for
//     placement upserts.
//   - X, Y: integer coordinate in [0,Width) x [0,Height).
//   - Color: hex RGB string, e.g. "#E50000".
//   - PlacedBy: identity of the user whose placement is currently visible.
//   - PlacedAt: server commit time in epoch milliseconds. Non-decreasing per
//     coordinate; the upsert refuses to regress it (see repo.UpsertPixel).
type Pixel struct {
	ID       string `json:"id"       gorm:"type:varchar(32);primaryKey"`
	X        int    `json:"x"        gorm:"not null;uniqueIndex:ux_pixels_coord,priority:1"`
	Y        int    `json:"y"        gorm:"not null;uniqueIndex:ux_pixels_coord,priority:2"`
	Color    string `json:"color"    gorm:"type:varchar(16);not null"`
	PlacedBy string `json:"placedBy" gorm:"column:placed_by;type:varchar(64);not null;index"`
	PlacedAt int64  `json:"placedAt" gorm:"column:placed_at;not null"`

	// User is the placer, preloaded for single-cell lookups.
	User *User `json:"user,omitempty" gorm:"foreignKey:PlacedBy;references:ID"`
}

// TableName returns the database table name for Pixel.
func (Pixel) TableName() string { return "pixels" }

// PixelHistory is one immutable record per accepted placement, kept even
// when the placement is immediately overpainted. History is append-only and
// independent of the current pixel table: it is the audit trail, not the
// canonical state.
type PixelHistory struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	X         int       `json:"x"        gorm:"not null;index:idx_history_coord,priority:1"`
	Y         int       `json:"y"        gorm:"not null;index:idx_history_coord,priority:2"`
	Color     string    `json:"color"    gorm:"type:varchar(16);not null"`
	PlacedBy  string    `json:"placedBy" gorm:"column:placed_by;type:varchar(64);not null;index"`
	PlacedAt  int64     `json:"placedAt" gorm:"column:placed_at;not null;index"`
	CreatedAt time.Time `json:"-"`
}

// TableName returns the database table name for PixelHistory.
func (PixelHistory) TableName() string { return "pixel_history" }

// Cooldown records the last accepted placement time per user. The cooldown
// is global per user, not per cell: placing anywhere resets the timer for
// all future placements. Rows are created on a user's first accepted
// placement, overwritten on every later one, and never deleted.
type Cooldown struct {
	UserID       string    `json:"user_id"        gorm:"type:varchar(64);primaryKey"`
	LastPlacedAt int64     `json:"last_placed_at" gorm:"column:last_placed_at;not null"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName returns the database table name for Cooldown.
func (Cooldown) TableName() string { return "cooldowns" }

// CoordID derives the deterministic pixel key for a coordinate pair.
func CoordID(x, y int) string { return fmt.Sprintf("%d_%d", x, y) }
