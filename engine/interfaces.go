package engine

import (
	"context"
	"time"

	"skillsprint/core"
)

// Storage abstracts persistence for profiles and task history. The service
// is the only writer; adapters return deep copies so callers never share
// mutable state with the store.
type Storage interface {
	// SaveProfile creates or replaces the user's profile.
	SaveProfile(ctx context.Context, p core.Profile) error
	// Profile returns the stored profile or core.ErrProfileNotFound.
	Profile(ctx context.Context, user core.UserID) (core.Profile, error)

	// AppendTasks adds a generated batch to the user's task history.
	AppendTasks(ctx context.Context, user core.UserID, tasks []core.Task) error
	// Tasks returns the full task history, all dates, in insertion order.
	Tasks(ctx context.Context, user core.UserID) ([]core.Task, error)
	// TasksByDate returns the tasks assigned for one calendar day.
	TasksByDate(ctx context.Context, user core.UserID, date string) ([]core.Task, error)
	// CompleteTask marks a task completed exactly once, recording the
	// optional quiz score and the completion timestamp. It returns the
	// updated task, core.ErrTaskNotFound, or core.ErrTaskCompleted.
	CompleteTask(ctx context.Context, user core.UserID, taskID string, score *int, at time.Time) (core.Task, error)

	// Reset removes the user's profile and entire task history.
	Reset(ctx context.Context, user core.UserID) error
}

// TaskGenerator produces a day's task batch; satisfied by *planner.Generator.
type TaskGenerator interface {
	DailyTasks(p core.Profile) ([]core.Task, error)
}
