package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"skillsprint/core"
	"skillsprint/engine"
)

func TestCounters(t *testing.T) {
	bus := engine.NewEventBus(engine.DispatchSync)
	defer bus.Close()

	c := NewCounters()
	unsub := Bind(bus, c)

	ctx := context.Background()
	bus.Publish(ctx, core.NewTasksAssigned("u-1", "2026-08-29", 3))
	bus.Publish(ctx, core.NewTaskCompleted("u-1", core.Task{ID: "t-1"}))
	bus.Publish(ctx, core.NewTaskCompleted("u-2", core.Task{ID: "t-2"}))
	bus.Publish(ctx, core.NewBadgeEarned("u-1", core.BadgeFirstSteps))

	today := time.Now().UTC()
	assert.Equal(t, int64(2), c.CompletionsOn(today))
	assert.Equal(t, int64(1), c.BadgesOn(today))
	assert.Equal(t, 2, c.ActiveOn(today))
	assert.Zero(t, c.CompletionsOn(today.AddDate(0, 0, -1)))

	unsub()
	bus.Publish(ctx, core.NewTaskCompleted("u-3", core.Task{ID: "t-3"}))
	assert.Equal(t, int64(2), c.CompletionsOn(today), "unsubscribed hook receives nothing")
}
