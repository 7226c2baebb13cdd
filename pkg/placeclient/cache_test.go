package placeclient

import "testing"

func px(x, y int, color, by string, at int64) Pixel {
	return Pixel{
		ID: coordKey(x, y), X: x, Y: y,
		Color: color, PlacedBy: by, PlacedAt: at,
	}
}

func TestCache_OptimisticOverlay(t *testing.T) {
	g := NewGridCache()
	g.Reset([]Pixel{px(5, 5, "#FFFFFF", "server", 1)})

	id := g.Place(px(5, 5, "#E50000", "me", 0))
	if id != "5_5" {
		t.Fatalf("overlay key = %q", id)
	}

	// The speculative value is visible immediately.
	cell, ok := g.At(5, 5)
	if !ok || cell.State != StatePending || cell.Pixel.Color != "#E50000" {
		t.Fatalf("merged view: %+v ok=%v", cell, ok)
	}
	if n := g.PendingCount(); n != 1 {
		t.Fatalf("pending count = %d", n)
	}
}

func TestCache_RejectRevertsToConfirmed(t *testing.T) {
	g := NewGridCache()
	g.Reset([]Pixel{px(5, 5, "#FFFFFF", "server", 1)})

	id := g.Place(px(5, 5, "#E50000", "me", 0))
	g.Reject(id)

	cell, ok := g.At(5, 5)
	if !ok || cell.State != StateConfirmed || cell.Pixel.Color != "#FFFFFF" {
		t.Fatalf("cell after reject: %+v ok=%v", cell, ok)
	}
}

func TestCache_RejectOnUnpaintedCellClearsIt(t *testing.T) {
	g := NewGridCache()
	id := g.Place(px(3, 3, "#E50000", "me", 0))
	g.Reject(id)

	if _, ok := g.At(3, 3); ok {
		t.Fatalf("cell should revert to unpainted")
	}
}

func TestCache_ConfirmAdoptsAuthoritativeValue(t *testing.T) {
	g := NewGridCache()
	id := g.Place(px(2, 2, "#E50000", "me", 0))

	// The server answers with its own timestamp and identity.
	g.Confirm(id, px(2, 2, "#E50000", "user-1", 12345))

	cell, ok := g.At(2, 2)
	if !ok || cell.State != StateConfirmed {
		t.Fatalf("cell after confirm: %+v ok=%v", cell, ok)
	}
	if cell.Pixel.PlacedAt != 12345 || cell.Pixel.PlacedBy != "user-1" {
		t.Fatalf("authoritative fields not adopted: %+v", cell.Pixel)
	}
	if g.PendingCount() != 0 {
		t.Fatalf("pending overlay not settled")
	}
}

// A live update for a cell with a pending overlay resolves the overlay by
// cell key even when the payload differs (someone else overwrote the cell
// between our optimistic write and the broadcast).
func TestCache_ApplyUpdateResolvesPendingByKey(t *testing.T) {
	g := NewGridCache()
	g.Place(px(4, 4, "#E50000", "me", 0))

	g.ApplyUpdate(px(4, 4, "#0000EA", "rival", 99))

	cell, ok := g.At(4, 4)
	if !ok || cell.State != StateConfirmed {
		t.Fatalf("cell after update: %+v ok=%v", cell, ok)
	}
	if cell.Pixel.Color != "#0000EA" || cell.Pixel.PlacedBy != "rival" {
		t.Fatalf("server value must win: %+v", cell.Pixel)
	}
	if g.PendingCount() != 0 {
		t.Fatalf("pending overlay survived an authoritative update")
	}
}

func TestCache_SnapshotMergedAndOrdered(t *testing.T) {
	g := NewGridCache()
	g.Reset([]Pixel{
		px(9, 1, "#FFFFFF", "a", 1),
		px(0, 0, "#222222", "b", 2),
	})
	g.Place(px(9, 1, "#E50000", "me", 0)) // shadows the confirmed cell
	g.Place(px(5, 0, "#94E044", "me", 0))

	cells := g.Snapshot()
	if len(cells) != 3 {
		t.Fatalf("snapshot size = %d", len(cells))
	}
	// Row-major: (0,0), (5,0), (9,1).
	if cells[0].Pixel.ID != "0_0" || cells[1].Pixel.ID != "5_0" || cells[2].Pixel.ID != "9_1" {
		t.Fatalf("order: %s, %s, %s", cells[0].Pixel.ID, cells[1].Pixel.ID, cells[2].Pixel.ID)
	}
	if cells[2].State != StatePending || cells[2].Pixel.Color != "#E50000" {
		t.Fatalf("pending must shadow confirmed: %+v", cells[2])
	}
}

func TestCache_ResetClearsPending(t *testing.T) {
	g := NewGridCache()
	g.Place(px(1, 1, "#E50000", "me", 0))
	g.Reset([]Pixel{px(2, 2, "#FFFFFF", "server", 5)})

	if g.PendingCount() != 0 {
		t.Fatalf("reset kept pending overlays")
	}
	if _, ok := g.At(1, 1); ok {
		t.Fatalf("stale optimistic cell survived reset")
	}
	if cell, ok := g.At(2, 2); !ok || cell.Pixel.Color != "#FFFFFF" {
		t.Fatalf("snapshot cell missing: %+v ok=%v", cell, ok)
	}
}
