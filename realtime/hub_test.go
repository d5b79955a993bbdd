package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"skillsprint/core"
)

func TestHubSubscribeBroadcastUnsubscribe(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(1)

	ev := core.NewPointsAdded("bob", 40, 40)
	h.Broadcast(context.Background(), ev)

	received := <-ch
	if received.UserID != "bob" || received.Type != core.EventPointsAdded {
		t.Fatalf("unexpected event: %+v", received)
	}

	h.Unsubscribe(id)
	_, ok := <-ch
	if ok {
		t.Fatal("expected channel closed after unsubscribe")
	}
}

func TestHubSubscribeUserFilters(t *testing.T) {
	h := NewHub()
	id, ch := h.SubscribeUser("alice", 2)
	defer h.Unsubscribe(id)

	h.Broadcast(context.Background(), core.NewPointsAdded("bob", 40, 40))
	h.Broadcast(context.Background(), core.NewPointsAdded("alice", 50, 90))

	received := <-ch
	if received.UserID != "alice" {
		t.Fatalf("expected alice event, got %+v", received)
	}
	select {
	case ev := <-ch:
		t.Fatalf("unexpected extra event: %+v", ev)
	default:
	}
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(1)
	defer h.Unsubscribe(id)

	h.Broadcast(context.Background(), core.NewPointsAdded("bob", 1, 1))
	h.Broadcast(context.Background(), core.NewPointsAdded("bob", 2, 3))

	received := <-ch
	if received.Delta != 1 {
		t.Fatalf("expected first event kept, got %+v", received)
	}
	select {
	case ev := <-ch:
		t.Fatalf("expected second event dropped, got %+v", ev)
	default:
	}
}

func TestMarshalJSON(t *testing.T) {
	ev := core.NewBadgeEarned("alice", core.BadgeFirstSteps)
	b := MarshalJSON(ev)
	var out core.Event
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Badge != core.BadgeFirstSteps {
		t.Fatalf("unexpected badge: %s", out.Badge)
	}
}
