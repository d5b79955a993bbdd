// Package analytics derives read-only progress statistics from a user's
// task history. Every function here is a total, pure function: empty input
// yields zero values, and nothing is ever mutated.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"skillsprint/core"
)

// DayActivity is one day's bucket in the weekly activity view.
type DayActivity struct {
	Day     string `json:"day"`  // weekday label, e.g. "Mon"
	Date    string `json:"date"` // calendar day, ISO form
	Minutes int    `json:"minutes"`
	Tasks   int    `json:"tasks"`
}

// WeeklyActivity buckets completed-task minutes and counts over the
// trailing 7 calendar days, oldest to newest, labeled by actual weekday.
func WeeklyActivity(tasks []core.Task, now time.Time) []DayActivity {
	out := make([]DayActivity, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		bucket := DayActivity{
			Day:  day.Format("Mon"),
			Date: day.Format(core.DateLayout),
		}
		for _, t := range tasks {
			if t.CompletedOn(day) {
				bucket.Minutes += t.Duration
				bucket.Tasks++
			}
		}
		out = append(out, bucket)
	}
	return out
}

// SkillProgress computes a completion percentage per selected skill:
// min(100, 10 per completed task + a bonus of 5 per task, scaled by score
// for scored quizzes).
func SkillProgress(skills []string, tasks []core.Task) map[string]float64 {
	progress := make(map[string]float64, len(skills))
	for _, skill := range skills {
		var count int
		var bonus float64
		for _, t := range tasks {
			if !t.Completed || t.Skill != skill {
				continue
			}
			count++
			if t.Type == core.TaskQuiz && t.Score != nil {
				bonus += float64(*t.Score) / 100 * 5
			} else {
				bonus += 5
			}
		}
		base := math.Min(100, float64(count)*10)
		progress[skill] = math.Min(100, base+bonus)
	}
	return progress
}

// AverageQuizScore returns the rounded mean score over completed quizzes
// that carry a score, or 0 when there are none.
func AverageQuizScore(tasks []core.Task) int {
	var sum, n int
	for _, t := range tasks {
		if t.Completed && t.Type == core.TaskQuiz && t.Score != nil {
			sum += *t.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// TotalMinutes sums the duration of completed tasks.
func TotalMinutes(tasks []core.Task) int {
	total := 0
	for _, t := range tasks {
		if t.Completed {
			total += t.Duration
		}
	}
	return total
}

// Achievement is one entry in the recent-achievements feed.
type Achievement struct {
	Type   string     `json:"type"` // "task", "badge", or "streak"
	Title  string     `json:"title"`
	Points int        `json:"points"`
	At     *time.Time `json:"at,omitempty"`
}

// RecentAchievements builds the dashboard feed: the three most recent
// completions, newest first, plus at most one badge entry and one streak
// milestone (streak >= 7), capped at five entries total.
func RecentAchievements(p core.Profile, tasks []core.Task, now time.Time) []Achievement {
	var completed []core.Task
	for _, t := range tasks {
		if t.Completed && t.CompletedAt != nil {
			completed = append(completed, t)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CompletedAt.After(*completed[j].CompletedAt)
	})
	if len(completed) > 3 {
		completed = completed[:3]
	}

	var out []Achievement
	for _, t := range completed {
		at := *t.CompletedAt
		out = append(out, Achievement{
			Type:   "task",
			Title:  fmt.Sprintf("Completed %q", t.Title),
			Points: t.Points,
			At:     &at,
		})
	}
	if len(p.Badges) > 0 {
		out = append(out, Achievement{
			Type:   "badge",
			Title:  fmt.Sprintf("Earned %q badge", p.Badges[len(p.Badges)-1]),
			Points: 100,
		})
	}
	if p.Streak >= 7 {
		out = append(out, Achievement{
			Type:   "streak",
			Title:  fmt.Sprintf("Started %d-day learning streak", p.Streak),
			Points: p.Streak * 10,
		})
	}
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}
