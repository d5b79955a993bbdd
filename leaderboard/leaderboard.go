// Package leaderboard ranks learners by total points.
package leaderboard

import (
	"context"

	"skillsprint/core"
	"skillsprint/engine"
)

// Entry represents one ranked learner.
type Entry struct {
	User   core.UserID `json:"user_id"`
	Points int64       `json:"points"`
}

// Board abstracts leaderboard operations.
type Board interface {
	Update(user core.UserID, points int64)
	Remove(user core.UserID)
	TopN(n int) []Entry
	Get(user core.UserID) (Entry, bool)
}

// Track keeps the board current from points events on the bus and returns
// an unsubscribe function.
func Track(bus *engine.EventBus, board Board) func() {
	return bus.Subscribe(core.EventPointsAdded, func(_ context.Context, e core.Event) {
		board.Update(e.UserID, e.Total)
	})
}
