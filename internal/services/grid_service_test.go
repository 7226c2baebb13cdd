package services

import (
	"context"
	"errors"
	"testing"

	"github.com/eureka-dev/go-place-backend/internal/domain"
	"github.com/eureka-dev/go-place-backend/internal/repo"
)

func seedPixels(t *testing.T, svc *PlaceService, clock *fakeClock, cells []struct {
	x, y int
	user string
}) {
	t.Helper()
	ctx := context.Background()
	for i, c := range cells {
		clock.set(int64(i+1) * 16_000)
		if _, err := svc.Place(ctx, req(c.x, c.y, "#E50000", ""), AuthContext{UserID: c.user}); err != nil {
			t.Fatalf("seed (%d,%d): %v", c.x, c.y, err)
		}
	}
}

func TestGridSnapshot(t *testing.T) {
	place, _, clock := newService(t)
	grid := NewGridService(place.DB)
	ctx := context.Background()

	got, err := grid.Snapshot(ctx)
	if err != nil {
		t.Fatalf("empty snapshot: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("empty canvas returned %d cells", len(got))
	}

	seedPixels(t, place, clock, []struct {
		x, y int
		user string
	}{
		{9, 2, "a"},
		{0, 0, "b"},
		{3, 2, "c"},
	})

	got, err = grid.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("snapshot size = %d", len(got))
	}
	// Row-major order: (0,0), (3,2), (9,2).
	if got[0].ID != "0_0" || got[1].ID != "3_2" || got[2].ID != "9_2" {
		t.Fatalf("snapshot order: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestGridGet(t *testing.T) {
	place, _, clock := newService(t)
	grid := NewGridService(place.DB)
	ctx := context.Background()

	if _, err := grid.Get(ctx, 4, 4); !errors.Is(err, ErrPixelNotFound) {
		t.Fatalf("unpainted cell: expected ErrPixelNotFound, got %v", err)
	}

	if err := repo.UpsertUser(ctx, place.DB, &domain.User{ID: "artist", Name: "Artist"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	clock.set(1_000)
	if _, err := place.Place(ctx, req(4, 4, "#CF6EE4", ""), AuthContext{UserID: "artist"}); err != nil {
		t.Fatalf("place: %v", err)
	}

	p, err := grid.Get(ctx, 4, 4)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Color != "#CF6EE4" || p.PlacedBy != "artist" {
		t.Fatalf("cell: %+v", p)
	}
	if p.User == nil || p.User.Name != "Artist" {
		t.Fatalf("placer join missing: %+v", p.User)
	}
}

func TestGridPlacer(t *testing.T) {
	place, _, _ := newService(t)
	grid := NewGridService(place.DB)
	ctx := context.Background()

	if _, err := grid.Placer(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: expected ErrUserNotFound, got %v", err)
	}

	if err := repo.UpsertUser(ctx, place.DB, &domain.User{ID: "artist", Name: "Artist"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	u, err := grid.Placer(ctx, "artist")
	if err != nil {
		t.Fatalf("placer: %v", err)
	}
	if u.ID != "artist" || u.Name != "Artist" {
		t.Fatalf("profile: %+v", u)
	}
}

func TestGridStats(t *testing.T) {
	place, _, clock := newService(t)
	grid := NewGridService(place.DB)
	ctx := context.Background()

	count, maxAt, err := grid.Stats(ctx)
	if err != nil || count != 0 || maxAt != 0 {
		t.Fatalf("empty stats = (%d, %d) err=%v", count, maxAt, err)
	}

	seedPixels(t, place, clock, []struct {
		x, y int
		user string
	}{
		{1, 1, "a"},
		{2, 2, "b"},
	})

	count, maxAt, err = grid.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 2 || maxAt != 32_000 {
		t.Fatalf("stats = (%d, %d), want (2, 32000)", count, maxAt)
	}
}

func TestGridHistoryPage(t *testing.T) {
	place, _, clock := newService(t)
	place.Canvas.Cooldown = 0
	grid := NewGridService(place.DB)
	ctx := context.Background()
	auth := AuthContext{UserID: "u1"}

	items, total, err := grid.HistoryPage(ctx, 1, 10)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("empty history: items=%d total=%d err=%v", len(items), total, err)
	}

	// Five placements, the last two overwriting the same cell.
	for i := 0; i < 5; i++ {
		clock.set(int64(i+1) * 1_000)
		x := i
		if i == 4 {
			x = 3
		}
		if _, err := place.Place(ctx, req(x, 0, "#94E044", ""), auth); err != nil {
			t.Fatalf("place %d: %v", i, err)
		}
	}

	items, total, err = grid.HistoryPage(ctx, 1, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if len(items) != 2 || items[0].PlacedAt != 5_000 || items[1].PlacedAt != 4_000 {
		t.Fatalf("page 1 newest-first: %+v", items)
	}

	items, _, err = grid.HistoryPage(ctx, 3, 2)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(items) != 1 || items[0].PlacedAt != 1_000 {
		t.Fatalf("last page: %+v", items)
	}

	// Out-of-range and invalid inputs fall back instead of failing.
	items, _, err = grid.HistoryPage(ctx, 99, 2)
	if err != nil || len(items) != 0 {
		t.Fatalf("past-the-end page: items=%d err=%v", len(items), err)
	}
	items, _, err = grid.HistoryPage(ctx, 0, -5)
	if err != nil || len(items) != 5 {
		t.Fatalf("defaulted page: items=%d err=%v", len(items), err)
	}
}
