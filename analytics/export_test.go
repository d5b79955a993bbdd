package analytics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsprint/core"
)

func TestSnapshotRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	p := core.Profile{
		ID:             "u-1",
		Email:          "ada@example.com",
		Name:           "Ada",
		Skills:         []string{"Python", "Data Analysis"},
		Level:          core.LevelIntermediate,
		DailyMinutes:   30,
		Progress:       42,
		Streak:         9,
		Badges:         []string{core.BadgeFirstSteps, core.BadgeConsistentLearner},
		TotalPoints:    730,
		CompletedTasks: 12,
		Updated:        now,
	}
	tasks := []core.Task{
		doneTask("Python", core.TaskQuiz, 8, scoreOf(90), now),
		doneTask("Data Analysis", core.TaskVideo, 15, nil, now.Add(-24*time.Hour)),
	}

	var buf bytes.Buffer
	require.NoError(t, NewSnapshot(p, tasks, now).Export(&buf))

	got, err := ImportSnapshot(&buf)
	require.NoError(t, err)

	assert.Equal(t, p.TotalPoints, got.Profile.TotalPoints)
	assert.Equal(t, p.Badges, got.Profile.Badges)
	assert.Equal(t, p.Streak, got.Profile.Streak)
	assert.Equal(t, p, got.Profile)
	assert.Equal(t, len(tasks), len(got.Tasks))
	assert.Equal(t, 90, got.AverageQuizScore)
	assert.Equal(t, 23, got.TotalMinutes)
	assert.InDelta(t, SkillProgress(p.Skills, tasks)["Python"], got.SkillProgress["Python"], 0.001)
}

func TestSnapshotDoesNotShareState(t *testing.T) {
	p := core.Profile{ID: "u-1", Badges: []string{core.BadgeFirstSteps}}
	tasks := []core.Task{doneTask("Python", core.TaskVideo, 15, nil, time.Now())}

	s := NewSnapshot(p, tasks, time.Now())
	s.Profile.Badges[0] = "mutated"
	s.Tasks[0].Completed = false

	assert.Equal(t, core.BadgeFirstSteps, p.Badges[0])
	assert.True(t, tasks[0].Completed)
}

func TestImportSnapshotRejectsBadInput(t *testing.T) {
	_, err := ImportSnapshot(strings.NewReader("{"))
	assert.Error(t, err)

	_, err = ImportSnapshot(strings.NewReader(`{"version":2,"profile":{"id":"u-1"}}`))
	assert.ErrorContains(t, err, "version")

	_, err = ImportSnapshot(strings.NewReader(`{"version":1,"profile":{"id":""}}`))
	assert.ErrorContains(t, err, "profile")
}

func TestImportSnapshotRecomputesDerivedViews(t *testing.T) {
	payload := `{
		"version": 1,
		"profile": {"id": "u-1", "skills": ["Python"]},
		"tasks": [{
			"id": "t-1", "user_id": "u-1", "skill": "Python", "type": "Quiz",
			"duration": 8, "completed": true, "score": 100,
			"completed_at": "2026-08-29T10:00:00Z"
		}],
		"average_quiz_score": 1,
		"total_minutes": 999
	}`
	got, err := ImportSnapshot(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 100, got.AverageQuizScore)
	assert.Equal(t, 8, got.TotalMinutes)
}
