package core

import "time"

// EventType enumerates domain events.
type EventType string

const (
	EventTasksAssigned EventType = "tasks_assigned"
	EventTaskCompleted EventType = "task_completed"
	EventPointsAdded   EventType = "points_added"
	EventBadgeEarned   EventType = "badge_earned"
	EventStreakChanged EventType = "streak_changed"
)

// Event represents an immutable domain event.
type Event struct {
	Type     EventType      `json:"type"`
	Time     time.Time      `json:"time"`
	UserID   UserID         `json:"user_id"`
	TaskID   string         `json:"task_id,omitempty"`
	Skill    string         `json:"skill,omitempty"`
	Badge    string         `json:"badge,omitempty"`
	Delta    int64          `json:"delta,omitempty"`
	Total    int64          `json:"total,omitempty"`
	Streak   int            `json:"streak,omitempty"`
	Score    *int           `json:"score,omitempty"`
	Count    int            `json:"count,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func NewTasksAssigned(user UserID, date string, count int) Event {
	return Event{Type: EventTasksAssigned, Time: time.Now().UTC(), UserID: user, Count: count, Metadata: map[string]any{"date": date}}
}

func NewTaskCompleted(user UserID, t Task) Event {
	return Event{Type: EventTaskCompleted, Time: time.Now().UTC(), UserID: user, TaskID: t.ID, Skill: t.Skill, Score: t.Score}
}

func NewPointsAdded(user UserID, delta int64, total int64) Event {
	return Event{Type: EventPointsAdded, Time: time.Now().UTC(), UserID: user, Delta: delta, Total: total}
}

func NewBadgeEarned(user UserID, badge string) Event {
	return Event{Type: EventBadgeEarned, Time: time.Now().UTC(), UserID: user, Badge: badge}
}

func NewStreakChanged(user UserID, streak int) Event {
	return Event{Type: EventStreakChanged, Time: time.Now().UTC(), UserID: user, Streak: streak}
}
