package live

import (
	"testing"
	"time"

	"github.com/eureka-dev/go-place-backend/internal/domain"
)

func pix(x, y int, color string) domain.Pixel {
	return domain.Pixel{
		ID: domain.CoordID(x, y), X: x, Y: y,
		Color: color, PlacedBy: "u1", PlacedAt: 1,
	}
}

func recv(t *testing.T, sub *Subscription) domain.Pixel {
	t.Helper()
	select {
	case p, ok := <-sub.Updates():
		if !ok {
			t.Fatalf("subscription closed unexpectedly")
		}
		return p
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for update")
	}
	return domain.Pixel{}
}

func TestHubFanOut(t *testing.T) {
	h := NewHub(8)
	a := h.Subscribe(Filter{})
	b := h.Subscribe(Filter{})

	h.Publish(pix(1, 2, "#E50000"))

	for _, sub := range []*Subscription{a, b} {
		got := recv(t, sub)
		if got.ID != "1_2" || got.Color != "#E50000" {
			t.Fatalf("delivered pixel: %+v", got)
		}
	}
}

func TestHubOrderPreserved(t *testing.T) {
	h := NewHub(8)
	sub := h.Subscribe(Filter{})

	colors := []string{"#FFFFFF", "#E50000", "#0000EA"}
	for _, c := range colors {
		h.Publish(pix(0, 0, c))
	}
	for i, want := range colors {
		if got := recv(t, sub); got.Color != want {
			t.Fatalf("update %d: got %s, want %s", i, got.Color, want)
		}
	}
}

func TestHubCoordFilter(t *testing.T) {
	h := NewHub(8)
	sub := h.Subscribe(Filter{Coord: "5_5"})

	h.Publish(pix(1, 1, "#E50000"))
	h.Publish(pix(5, 5, "#0000EA"))

	if got := recv(t, sub); got.ID != "5_5" {
		t.Fatalf("filter leaked update for %s", got.ID)
	}
	select {
	case p := <-sub.Updates():
		t.Fatalf("unexpected extra update: %+v", p)
	default:
	}
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	h := NewHub(2)
	slow := h.Subscribe(Filter{})
	fast := h.Subscribe(Filter{})

	// Fill the slow subscriber's buffer, then overflow it. The fast one
	// keeps draining and must stay attached.
	for i := 0; i < 3; i++ {
		h.Publish(pix(i, 0, "#FFFFFF"))
		recv(t, fast)
	}

	if n := h.SubscriberCount(); n != 1 {
		t.Fatalf("subscriber count after overflow = %d, want 1", n)
	}

	// The dropped channel still holds the buffered updates, then closes.
	recv(t, slow)
	recv(t, slow)
	if _, ok := <-slow.Updates(); ok {
		t.Fatalf("dropped subscription channel not closed")
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub(8)
	sub := h.Subscribe(Filter{})

	h.Unsubscribe(sub)
	if n := h.SubscriberCount(); n != 0 {
		t.Fatalf("subscriber count = %d, want 0", n)
	}
	if _, ok := <-sub.Updates(); ok {
		t.Fatalf("channel not closed after unsubscribe")
	}

	// Idempotent, and publishing afterwards must not panic.
	h.Unsubscribe(sub)
	h.Publish(pix(0, 0, "#FFFFFF"))
}
