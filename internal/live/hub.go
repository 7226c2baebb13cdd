// Package live implements the fan-out side of the canvas: committed
// placements are published here and delivered to every active
// subscription, in commit order, without ever blocking the mutator.
//
// A Subscription is a buffered channel of pixels plus an optional
// single-cell filter. A subscriber that stops draining its channel is
// closed and dropped once the buffer fills; dropping is preferred over
// silently skipping updates, because a reconnecting client re-syncs from
// a fresh snapshot while a client with a gap would render stale cells
// forever.
package live

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/eureka-dev/go-place-backend/internal/domain"
)

var liveSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "canvas_live_subscribers",
	Help: "Number of active live canvas subscriptions.",
})

func init() {
	prometheus.MustRegister(liveSubscribers)
}

// Filter restricts a subscription to a subset of the canvas. The zero
// value matches every cell.
type Filter struct {
	// Coord, when set, limits delivery to the single cell with this id.
	Coord string
}

func (f Filter) matches(p domain.Pixel) bool {
	return f.Coord == "" || f.Coord == p.ID
}

// Subscription is one live listener. Updates delivers committed pixels in
// commit order; the channel is closed when the subscription is dropped,
// either by Unsubscribe or because the subscriber fell too far behind.
type Subscription struct {
	id     uint64
	filter Filter
	ch     chan domain.Pixel
}

// Updates returns the receive side of the subscription.
func (s *Subscription) Updates() <-chan domain.Pixel { return s.ch }

// Hub fans committed pixels out to subscriptions.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*Subscription
	buffer int
}

// NewHub constructs a Hub whose subscriptions buffer up to buffer pending
// updates each.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 256
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers a new listener. The caller must drain Updates or
// call Unsubscribe; an abandoned subscription is dropped by the hub once
// its buffer fills.
func (h *Hub) Subscribe(filter Filter) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		filter: filter,
		ch:     make(chan domain.Pixel, h.buffer),
	}
	h.subs[sub.id] = sub
	liveSubscribers.Set(float64(len(h.subs)))
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call more than
// once and safe to call for a subscription the hub already dropped.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(sub.id)
}

func (h *Hub) dropLocked(id uint64) {
	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(sub.ch)
	liveSubscribers.Set(float64(len(h.subs)))
}

// Publish delivers p to every subscription whose filter matches. It never
// blocks: a subscription whose buffer is full is dropped on the spot.
func (h *Hub) Publish(p domain.Pixel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		if !sub.filter.matches(p) {
			continue
		}
		select {
		case sub.ch <- p:
		default:
			log.Warn().
				Uint64("subscription_id", id).
				Str("pixel_id", p.ID).
				Msg("dropping slow live subscriber")
			h.dropLocked(id)
		}
	}
}

// SubscriberCount reports the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
