package analytics

import (
	"context"
	"sync"
	"time"

	"skillsprint/core"
	"skillsprint/engine"
)

// Hook receives domain events for KPI aggregation.
type Hook interface {
	OnEvent(e core.Event)
}

// Counters tracks per-day completion and badge counts plus daily active
// learners, fed from the engine event bus.
type Counters struct {
	mu          sync.Mutex
	completions map[string]int64
	badges      map[string]int64
	active      map[string]map[core.UserID]struct{}
}

func NewCounters() *Counters {
	return &Counters{
		completions: map[string]int64{},
		badges:      map[string]int64{},
		active:      map[string]map[core.UserID]struct{}{},
	}
}

func (c *Counters) OnEvent(e core.Event) {
	day := e.Time.UTC().Format(core.DateLayout)
	c.mu.Lock()
	defer c.mu.Unlock()
	switch e.Type {
	case core.EventTaskCompleted:
		c.completions[day]++
		c.touch(day, e.UserID)
	case core.EventBadgeEarned:
		c.badges[day]++
	case core.EventTasksAssigned:
		c.touch(day, e.UserID)
	}
}

func (c *Counters) touch(day string, user core.UserID) {
	if c.active[day] == nil {
		c.active[day] = map[core.UserID]struct{}{}
	}
	c.active[day][user] = struct{}{}
}

// CompletionsOn returns the completion count for a calendar day.
func (c *Counters) CompletionsOn(day time.Time) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completions[day.UTC().Format(core.DateLayout)]
}

// BadgesOn returns the badge-award count for a calendar day.
func (c *Counters) BadgesOn(day time.Time) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.badges[day.UTC().Format(core.DateLayout)]
}

// ActiveOn returns the number of distinct active learners for a day.
func (c *Counters) ActiveOn(day time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active[day.UTC().Format(core.DateLayout)])
}

// Bind subscribes the hook to every event type on the bus and returns an
// unsubscribe function.
func Bind(bus *engine.EventBus, h Hook) func() {
	types := []core.EventType{
		core.EventTasksAssigned,
		core.EventTaskCompleted,
		core.EventPointsAdded,
		core.EventBadgeEarned,
		core.EventStreakChanged,
	}
	unsubs := make([]func(), 0, len(types))
	for _, typ := range types {
		unsubs = append(unsubs, bus.Subscribe(typ, func(_ context.Context, e core.Event) {
			h.OnEvent(e)
		}))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
