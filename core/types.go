// Package core defines the skillsprint learning domain: user profiles,
// daily learning tasks, quiz questions, and the badge catalog with its
// eligibility rules.
package core

import (
	"errors"
	"strings"
	"time"
)

// UserID uniquely identifies a learner.
type UserID string

// TaskType enumerates the content types a daily task can carry.
type TaskType string

const (
	TaskVideo    TaskType = "Video"
	TaskArticle  TaskType = "Article"
	TaskExercise TaskType = "Exercise"
	TaskQuiz     TaskType = "Quiz"
)

// TaskTypes lists all task types in assignment-cycle order.
var TaskTypes = []TaskType{TaskVideo, TaskArticle, TaskExercise, TaskQuiz}

// Level is a learner's self-reported experience tier.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Theme is a display preference stored on the profile; the service never
// interprets it beyond persisting it.
type Theme string

const (
	ThemeZen       Theme = "Zen"
	ThemeCyberpunk Theme = "Cyberpunk"
	ThemeClassic   Theme = "Classic"
)

// DateLayout is the calendar-day form used for task assignment dates.
const DateLayout = "2006-01-02"

// Profile is a snapshot of a learner's state. All mutation goes through the
// engine; storage adapters return deep copies to keep snapshots immutable.
type Profile struct {
	ID             UserID    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Skills         []string  `json:"skills"`
	Level          Level     `json:"experience_level"`
	DailyMinutes   int       `json:"daily_minutes"`
	Progress       int       `json:"progress"`
	Streak         int       `json:"streak"`
	Badges         []string  `json:"badges"`
	Theme          Theme     `json:"theme"`
	TotalPoints    int64     `json:"total_points"`
	CompletedTasks int       `json:"completed_tasks"`
	Updated        time.Time `json:"updated"`
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	cp := p
	cp.Skills = append([]string(nil), p.Skills...)
	cp.Badges = append([]string(nil), p.Badges...)
	return cp
}

// HasBadge reports whether the profile already recorded the named badge.
func (p Profile) HasBadge(name string) bool {
	for _, b := range p.Badges {
		if b == name {
			return true
		}
	}
	return false
}

// HasSkill reports whether the skill is among the selected skills.
func (p Profile) HasSkill(skill string) bool {
	for _, s := range p.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// Task is one learning unit assigned to a user for a calendar day.
// Completion fields are set exactly once and never revert.
type Task struct {
	ID          string     `json:"id"`
	UserID      UserID     `json:"user_id"`
	Date        string     `json:"date"`
	Title       string     `json:"title"`
	Type        TaskType   `json:"type"`
	Duration    int        `json:"duration"`
	Completed   bool       `json:"completed"`
	Points      int        `json:"points"`
	Skill       string     `json:"skill"`
	Score       *int       `json:"score,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	cp := t
	if t.Score != nil {
		s := *t.Score
		cp.Score = &s
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		cp.CompletedAt = &at
	}
	return cp
}

// CompletedOn reports whether the task was completed on the given calendar
// day in the day's location.
func (t Task) CompletedOn(day time.Time) bool {
	if !t.Completed || t.CompletedAt == nil {
		return false
	}
	y1, m1, d1 := t.CompletedAt.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Question is a single multiple-choice quiz question. Options always holds
// exactly four entries with Correct indexing the right one.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
}

// Valid reports whether the question has usable shape.
func (q Question) Valid() bool {
	return strings.TrimSpace(q.Prompt) != "" &&
		len(q.Options) == 4 &&
		q.Correct >= 0 && q.Correct < len(q.Options)
}

// Badge is a named achievement. Earned is contextual: it is set on the
// copies returned by EvaluateBadges, never persisted on the catalog.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Requirement string `json:"requirement"`
	Earned      bool   `json:"earned"`
}

// NormalizeUserID trims and lowercases user identifiers.
func NormalizeUserID(id UserID) (UserID, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return "", errors.New("empty user id")
	}
	return UserID(strings.ToLower(s)), nil
}

// ValidateLevel checks the experience tier against the known set.
func ValidateLevel(l Level) error {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return nil
	}
	return errors.New("unknown experience level")
}

// NormalizeSkills trims entries and drops duplicates while preserving order.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
