package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"skillsprint/analytics"
	"skillsprint/core"
)

// OnboardRequest mirrors the public JSON surface of the onboarding call.
type OnboardRequest struct {
	Email        string     `json:"email,omitempty"`
	Name         string     `json:"name"`
	Skills       []string   `json:"skills"`
	Level        core.Level `json:"experience_level"`
	DailyMinutes int        `json:"daily_minutes"`
	Theme        core.Theme `json:"theme,omitempty"`
}

// OnboardResult is the profile plus the first day's task plan.
type OnboardResult struct {
	Profile core.Profile `json:"profile"`
	Tasks   []core.Task  `json:"tasks"`
}

// SettingsUpdate carries a partial profile edit. Nil fields are left unchanged.
type SettingsUpdate struct {
	Name         *string     `json:"name,omitempty"`
	Skills       []string    `json:"skills,omitempty"`
	Level        *core.Level `json:"experience_level,omitempty"`
	DailyMinutes *int        `json:"daily_minutes,omitempty"`
	Theme        *core.Theme `json:"theme,omitempty"`
}

// CompletionResult mirrors the response of task completion and quiz submission.
type CompletionResult struct {
	Task          core.Task    `json:"task"`
	Profile       core.Profile `json:"profile"`
	PointsAwarded int          `json:"points_awarded"`
	NewBadges     []core.Badge `json:"new_badges,omitempty"`
}

// ProgressReport aggregates the progress dashboard views.
type ProgressReport struct {
	WeeklyActivity     []analytics.DayActivity `json:"weekly_activity"`
	SkillProgress      map[string]float64      `json:"skill_progress"`
	AverageQuizScore   int                     `json:"average_quiz_score"`
	TotalMinutes       int                     `json:"total_minutes"`
	RecentAchievements []analytics.Achievement `json:"recent_achievements"`
}

// LessonContent is a generated lesson for a task.
type LessonContent struct {
	TaskID  string `json:"task_id"`
	Content string `json:"content"`
}

// LeaderboardEntry mirrors one ranked leaderboard row.
type LeaderboardEntry struct {
	User   string `json:"user_id"`
	Points int64  `json:"points"`
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks"`
}

// APIError is the structured error envelope returned by the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
			return fmt.Errorf("request failed: status %d", resp.StatusCode)
		}
		return apiErr
	}
	if target == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrEmptyUserID is returned when user id is empty.
var ErrEmptyUserID = errors.New("user id is required")
