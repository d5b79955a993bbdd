package learn

import (
	"context"
	"testing"

	mem "skillsprint/adapters/memory"
	"skillsprint/core"
	"skillsprint/engine"
	"skillsprint/leaderboard"
	"skillsprint/realtime"
)

func onboard(t *testing.T, svc *engine.LearnService) core.Profile {
	t.Helper()
	p, tasks, err := svc.Onboard(context.Background(), engine.OnboardRequest{
		Name:         "Alice",
		Skills:       []string{"Python"},
		Level:        core.LevelBeginner,
		DailyMinutes: 30,
	})
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if len(tasks) == 0 {
		t.Fatal("expected a first day plan")
	}
	return p
}

func TestNewDefaultsAndOptions(t *testing.T) {
	hub := realtime.NewHub()
	svc := New(
		WithRealtime(hub),
		WithStorage(mem.New()),
		WithDispatchMode(engine.DispatchSync),
	)
	defer svc.Close()

	_, ch := hub.Subscribe(8)

	p := onboard(t, svc)

	// the realtime bridge should have seen the assignment event
	ev := <-ch
	if ev.Type != core.EventTasksAssigned || ev.UserID != p.ID {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestNewWithoutOptionsUsesDefaults(t *testing.T) {
	svc := New(WithDispatchMode(engine.DispatchSync))
	defer svc.Close()

	p := onboard(t, svc)

	got, err := svc.Profile(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if got.ID != p.ID {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestLeaderboardBridge(t *testing.T) {
	board := leaderboard.NewSkipList()
	svc := New(
		WithDispatchMode(engine.DispatchSync),
		WithLeaderboard(board),
	)
	defer svc.Close()

	p := onboard(t, svc)

	tasks, err := svc.DailyTasks(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("daily tasks: %v", err)
	}
	if _, err := svc.CompleteTask(context.Background(), p.ID, tasks[0].ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	entries := board.TopN(1)
	if len(entries) != 1 || entries[0].User != p.ID || entries[0].Points <= 0 {
		t.Fatalf("unexpected leaderboard: %+v", entries)
	}
}
