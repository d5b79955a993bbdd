package leaderboard

import (
	"context"
	"testing"

	"skillsprint/core"
	"skillsprint/engine"
)

func TestSkipListBasic(t *testing.T) {
	s := NewSkipList()
	s.Update(core.UserID("a"), 10)
	s.Update(core.UserID("b"), 20)
	s.Update(core.UserID("c"), 15)
	top := s.TopN(3)
	if len(top) != 3 || top[0].User != core.UserID("b") || top[1].User != core.UserID("c") || top[2].User != core.UserID("a") {
		t.Fatalf("unexpected order: %#v", top)
	}
	s.Update(core.UserID("a"), 25)
	top = s.TopN(1)
	if top[0].User != core.UserID("a") {
		t.Fatalf("top should be a, got %#v", top)
	}
}

func TestSkipListTiesOrderByUser(t *testing.T) {
	s := NewSkipList()
	s.Update(core.UserID("zed"), 50)
	s.Update(core.UserID("amy"), 50)
	top := s.TopN(2)
	if top[0].User != core.UserID("amy") || top[1].User != core.UserID("zed") {
		t.Fatalf("ties should order by user id: %#v", top)
	}
}

func TestSkipListRemoveAndGet(t *testing.T) {
	s := NewSkipList()
	s.Update(core.UserID("a"), 10)

	e, ok := s.Get(core.UserID("a"))
	if !ok || e.Points != 10 {
		t.Fatalf("get: %#v ok=%v", e, ok)
	}

	s.Remove(core.UserID("a"))
	if _, ok := s.Get(core.UserID("a")); ok {
		t.Fatal("expected removed")
	}
	if top := s.TopN(10); len(top) != 0 {
		t.Fatalf("expected empty board, got %#v", top)
	}
}

func TestTrackUpdatesFromPointsEvents(t *testing.T) {
	bus := engine.NewEventBus(engine.DispatchSync)
	defer bus.Close()

	board := NewSkipList()
	unsub := Track(bus, board)

	ctx := context.Background()
	bus.Publish(ctx, core.NewPointsAdded("alice", 40, 40))
	bus.Publish(ctx, core.NewPointsAdded("bob", 90, 90))
	bus.Publish(ctx, core.NewPointsAdded("alice", 60, 100))

	top := board.TopN(2)
	if len(top) != 2 || top[0].User != core.UserID("alice") || top[0].Points != 100 {
		t.Fatalf("unexpected board: %#v", top)
	}

	unsub()
	bus.Publish(ctx, core.NewPointsAdded("carol", 500, 500))
	if _, ok := board.Get(core.UserID("carol")); ok {
		t.Fatal("unsubscribed tracker must not update the board")
	}
}
