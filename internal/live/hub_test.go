package live

import (
	"testing"

	"github.com/plantsforlife/storefront/internal/orders"
)

func eventFor(userID string) Event {
	return Event{
		Type:  EventOrderPlaced,
		Order: orders.Order{OrderID: "o1", UserID: userID, Status: orders.StatusPlaced},
	}
}

func TestSubscribe_MineFiltersByUser(t *testing.T) {
	h := NewHub()
	mine, releaseMine := h.Subscribe(ScopeMine, "u1")
	defer releaseMine()
	other, releaseOther := h.Subscribe(ScopeMine, "u2")
	defer releaseOther()

	h.Publish(eventFor("u1"))

	select {
	case ev := <-mine:
		if ev.Order.UserID != "u1" {
			t.Fatalf("wrong event: %+v", ev)
		}
	default:
		t.Fatalf("owner did not receive their event")
	}
	select {
	case ev := <-other:
		t.Fatalf("u2 must not see u1's order: %+v", ev)
	default:
	}
}

func TestSubscribe_AllSeesEverything(t *testing.T) {
	h := NewHub()
	all, release := h.Subscribe(ScopeAll, "admin")
	defer release()

	h.Publish(eventFor("u1"))
	h.Publish(eventFor("u2"))

	for i := 0; i < 2; i++ {
		select {
		case <-all:
		default:
			t.Fatalf("admin scope missed event %d", i)
		}
	}
}

func TestRelease_StopsDeliveryAndFreesSubscription(t *testing.T) {
	h := NewHub()
	ch, release := h.Subscribe(ScopeAll, "admin")

	if h.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber")
	}
	release()
	if h.SubscriberCount() != 0 {
		t.Fatalf("release did not free the subscription")
	}

	// channel is closed, publishing afterwards must not panic
	h.Publish(eventFor("u1"))
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after release")
	}

	// releasing twice is safe
	release()
}

func TestPublish_DropsWhenSubscriberFallsBehind(t *testing.T) {
	h := NewHub()
	ch, release := h.Subscribe(ScopeAll, "admin")
	defer release()

	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(eventFor("u1")) // must never block
	}

	delivered := 0
	for {
		select {
		case <-ch:
			delivered++
			continue
		default:
		}
		break
	}
	if delivered != subscriberBuffer {
		t.Fatalf("expected %d buffered events, got %d", subscriberBuffer, delivered)
	}
}
