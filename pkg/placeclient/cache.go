// Package placeclient is the Go client for the canvas API: a typed HTTP
// placer, a WebSocket subscriber, and a local grid cache with optimistic
// placements.
//
// The cache keeps two layers per cell: the last server-confirmed pixel and
// an optional pending overlay written at the moment the user places, before
// the server has answered. Reads merge pending over confirmed so the UI
// repaints instantly; a rejection (cooldown, validation, timeout) drops the
// overlay and the cell falls back to the confirmed layer. Incoming live
// updates are authoritative and always replace local state; they resolve a
// matching pending entry by cell key, never by comparing payloads, so an
// overwrite race still converges cleanly.
package placeclient

import (
	"sort"
	"sync"
)

// CellState classifies how a cached cell value was obtained.
type CellState int

const (
	// StateConfirmed marks a value received from the server.
	StateConfirmed CellState = iota
	// StatePending marks a local speculative value awaiting the server.
	StatePending
)

// Cell is one merged cache entry.
type Cell struct {
	Pixel Pixel
	State CellState
}

// GridCache is a local copy of the canvas with optimistic overlays. Safe
// for concurrent use; the WebSocket reader and the UI typically share one.
type GridCache struct {
	mu        sync.RWMutex
	confirmed map[string]Pixel
	pending   map[string]Pixel
}

// NewGridCache returns an empty cache.
func NewGridCache() *GridCache {
	return &GridCache{
		confirmed: make(map[string]Pixel),
		pending:   make(map[string]Pixel),
	}
}

// Reset replaces the confirmed layer with a full server snapshot and
// clears every pending overlay. Used on connect and reconnect.
func (g *GridCache) Reset(pixels []Pixel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirmed = make(map[string]Pixel, len(pixels))
	for _, p := range pixels {
		g.confirmed[p.ID] = p
	}
	g.pending = make(map[string]Pixel)
}

// Place records a speculative placement and returns its cell key. The
// caller dispatches the server call and later settles the overlay with
// Confirm or Reject.
func (g *GridCache) Place(p Pixel) string {
	if p.ID == "" {
		p.ID = coordKey(p.X, p.Y)
	}
	g.mu.Lock()
	g.pending[p.ID] = p
	g.mu.Unlock()
	return p.ID
}

// Confirm settles the pending overlay for id with the authoritative pixel
// the server committed.
func (g *GridCache) Confirm(id string, authoritative Pixel) {
	g.mu.Lock()
	delete(g.pending, id)
	g.confirmed[authoritative.ID] = authoritative
	g.mu.Unlock()
}

// Reject drops the pending overlay for id; the cell reverts to its last
// confirmed value (or to unpainted).
func (g *GridCache) Reject(id string) {
	g.mu.Lock()
	delete(g.pending, id)
	g.mu.Unlock()
}

// ApplyUpdate reconciles one live update. The server value replaces the
// confirmed layer unconditionally and resolves any pending overlay on the
// same cell: whatever the server says this cell looks like now supersedes
// what we hoped it would.
func (g *GridCache) ApplyUpdate(p Pixel) {
	g.mu.Lock()
	g.confirmed[p.ID] = p
	delete(g.pending, p.ID)
	g.mu.Unlock()
}

// At returns the merged view of one cell and whether it is painted.
func (g *GridCache) At(x, y int) (Cell, bool) {
	id := coordKey(x, y)
	g.mu.RLock()
	defer g.mu.RUnlock()
	if p, ok := g.pending[id]; ok {
		return Cell{Pixel: p, State: StatePending}, true
	}
	if p, ok := g.confirmed[id]; ok {
		return Cell{Pixel: p, State: StateConfirmed}, true
	}
	return Cell{}, false
}

// Snapshot returns every painted cell in the merged view, in row-major
// order. Pending overlays shadow confirmed values for the same cell.
func (g *GridCache) Snapshot() []Cell {
	g.mu.RLock()
	cells := make([]Cell, 0, len(g.confirmed)+len(g.pending))
	for id, p := range g.confirmed {
		if _, shadowed := g.pending[id]; shadowed {
			continue
		}
		cells = append(cells, Cell{Pixel: p, State: StateConfirmed})
	}
	for _, p := range g.pending {
		cells = append(cells, Cell{Pixel: p, State: StatePending})
	}
	g.mu.RUnlock()

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Pixel.Y != cells[j].Pixel.Y {
			return cells[i].Pixel.Y < cells[j].Pixel.Y
		}
		return cells[i].Pixel.X < cells[j].Pixel.X
	})
	return cells
}

// PendingCount reports how many placements are still awaiting the server.
func (g *GridCache) PendingCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.pending)
}
