// Package services – PlaceService
//
// This file implements the PlaceService, the authoritative mutator of the
// canvas. It validates a placement (bounds, color, identity), enforces the
// global per-user cooldown, commits the cell upsert and cooldown claim in
// one transaction, appends the history entry best-effort, and hands the
// committed pixel to the live hub for fan-out.
//
// Concurrency: the cooldown check-then-set must be serialized per user so
// two simultaneous requests cannot both observe an expired cooldown. Two
// layers guarantee this: a per-user mutex keeps same-user requests from
// interleaving inside one process, and the conditional cooldown upsert
// (repo.ClaimCooldown) is a database-level compare-and-set that holds even
// across processes. Requests from different users run fully in parallel.
//
// Service-level errors (ErrOutOfBounds, ErrInvalidColor, ErrAuthRequired,
// *CooldownError) are returned for predictable cases so handlers can map
// them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/eureka-dev/go-place-backend/internal/config"
	"github.com/eureka-dev/go-place-backend/internal/domain"
	"github.com/eureka-dev/go-place-backend/internal/repo"
)

// Publisher receives committed pixels for live fan-out. Implementations
// must not block: the commit path completes regardless of how many
// subscribers are listening.
type Publisher interface {
	Publish(p domain.Pixel)
}

// PlacementRequest is the typed, validated form of a placement intent.
// Transport layers parse their framing into this struct before any
// business logic runs.
type PlacementRequest struct {
	// ID is the client-supplied cell key "{x}_{y}". It is recomputed from
	// the coordinates server-side; a mismatching value is ignored.
	ID string
	X  int
	Y  int
	// Color is the requested hex color.
	Color string
	// PlacedBy is the client-claimed placer identity. Only honored when the
	// service is configured to trust a pre-validating intermediary.
	PlacedBy string
	// PlacedAt is the client-side timestamp in epoch ms. Informational
	// only: the committed PlacedAt is always server time.
	PlacedAt int64
}

// AuthContext carries the identity resolved from the session boundary.
// A zero value means the request is anonymous.
type AuthContext struct {
	UserID string
}

// userEntry is one per-user serialization point, tracked with a last-seen
// time so idle entries can be evicted.
type userEntry struct {
	mu       sync.Mutex
	lastSeen time.Time
}

// PlaceService implements the authoritative placement pipeline.
type PlaceService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Hub receives committed pixels; may be nil in tests.
	Hub Publisher
	// Canvas holds geometry and placement policy.
	Canvas config.CanvasConfig

	// Now is a clock seam for tests; defaults to time.Now.
	Now func() time.Time

	mu       sync.Mutex
	users    map[string]*userEntry
	lookupN  uint64
	entryTTL time.Duration
}

// NewPlaceService constructs a PlaceService bound to db and hub.
func NewPlaceService(db *gorm.DB, hub Publisher, canvas config.CanvasConfig) *PlaceService {
	return &PlaceService{
		DB:       db,
		Hub:      hub,
		Canvas:   canvas,
		Now:      time.Now,
		users:    make(map[string]*userEntry),
		entryTTL: 10 * time.Minute,
	}
}

// lockUser returns the serialization point for userID, creating it on
// demand. Idle entries are evicted opportunistically after a threshold of
// lookups so the map stays bounded.
func (s *PlaceService) lockUser(userID string) *userEntry {
	now := s.now()

	s.mu.Lock()
	s.lookupN++
	if s.lookupN >= 5000 {
		for k, e := range s.users {
			if now.Sub(e.lastSeen) >= s.entryTTL {
				delete(s.users, k)
			}
		}
		s.lookupN = 0
	}

	e, ok := s.users[userID]
	if !ok {
		e = &userEntry{}
		s.users[userID] = e
	}
	e.lastSeen = now
	s.mu.Unlock()
	return e
}

func (s *PlaceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Place validates, rate-limits, commits, and logs one placement.
//
// Semantics:
//   - Bounds and color are checked first; violations reject with no state
//     change.
//   - Identity: a verified session (auth.UserID) always wins. The request's
//     claimed PlacedBy is accepted only when TrustClaimedPlacer is enabled.
//   - Cooldown: the claim and the cell upsert share one transaction, so a
//     failed upsert also releases the claim. Rejection carries the
//     remaining wait.
//   - History: appended after commit, best-effort. A failed append is
//     logged and counted, never surfaced, and never rolls back the pixel.
//   - The committed pixel is published to the hub without blocking.
//
// On success the returned pixel is the authoritative committed row.
func (s *PlaceService) Place(ctx context.Context, req PlacementRequest, auth AuthContext) (*domain.Pixel, error) {
	if req.X < 0 || req.X >= s.Canvas.Width || req.Y < 0 || req.Y >= s.Canvas.Height {
		placementsRejected.WithLabelValues("bounds").Inc()
		return nil, ErrOutOfBounds
	}
	if !domain.ValidColor(req.Color, s.Canvas.StrictPalette) {
		placementsRejected.WithLabelValues("color").Inc()
		return nil, ErrInvalidColor
	}

	userID := auth.UserID
	if userID == "" && s.Canvas.TrustClaimedPlacer {
		// Trust boundary: placedBy stands in for a session only when every
		// caller is a pre-validating intermediary. See config.CanvasConfig.
		userID = req.PlacedBy
	}
	if userID == "" {
		placementsRejected.WithLabelValues("auth").Inc()
		return nil, ErrAuthRequired
	}

	entry := s.lockUser(userID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	nowMs := s.now().UnixMilli()
	cooldownMs := s.Canvas.Cooldown.Milliseconds()

	pixel := &domain.Pixel{
		ID:       domain.CoordID(req.X, req.Y),
		X:        req.X,
		Y:        req.Y,
		Color:    req.Color,
		PlacedBy: userID,
		PlacedAt: nowMs,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := repo.ClaimCooldown(ctx, tx, userID, nowMs, cooldownMs)
		if err != nil {
			return err
		}
		if !claimed {
			elapsed, ok, err := repo.ElapsedSince(ctx, tx, userID, nowMs)
			if err != nil {
				return err
			}
			remaining := cooldownMs - elapsed
			if !ok || remaining < 0 {
				remaining = 0
			}
			return &CooldownError{Remaining: time.Duration(remaining) * time.Millisecond}
		}
		return repo.UpsertPixel(ctx, tx, pixel)
	})
	if err != nil {
		var cd *CooldownError
		if errors.As(err, &cd) {
			placementsRejected.WithLabelValues("cooldown").Inc()
			return nil, cd
		}
		return nil, err
	}

	placementsAccepted.Inc()

	// History is the audit trail, not canonical state: an append failure
	// must not invalidate the committed placement.
	if _, err := repo.AppendHistory(ctx, s.DB, pixel); err != nil {
		historyAppendFailures.Inc()
		log.Error().
			Err(err).
			Str("pixel_id", pixel.ID).
			Str("user_id", userID).
			Msg("history append failed after commit")
	}

	if s.Hub != nil {
		s.Hub.Publish(*pixel)
	}
	return pixel, nil
}

// Remaining reports how long userID must still wait before the next
// placement, 0 when eligible. The read side of the cooldown tracker.
func (s *PlaceService) Remaining(ctx context.Context, userID string, now time.Time) (time.Duration, error) {
	elapsed, ok, err := repo.ElapsedSince(ctx, s.DB, userID, now.UnixMilli())
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	remaining := s.Canvas.Cooldown.Milliseconds() - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return time.Duration(remaining) * time.Millisecond, nil
}
