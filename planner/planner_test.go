package planner

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsprint/core"
)

func testGenerator() *Generator {
	n := 0
	return New(
		WithClock(func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithIDFunc(func() string { n++; return fmt.Sprintf("task-%d", n) }),
	)
}

func TestDailyTasksBatchShape(t *testing.T) {
	g := testGenerator()
	p := core.Profile{
		ID:           "u1",
		Skills:       []string{"Python", "Data Analysis"},
		Level:        core.LevelIntermediate,
		DailyMinutes: 30,
	}

	tasks, err := g.DailyTasks(p)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	wantSkills := []string{"Python", "Data Analysis", "Python"}
	wantTypes := []core.TaskType{core.TaskVideo, core.TaskArticle, core.TaskExercise}
	for i, task := range tasks {
		assert.Equal(t, wantSkills[i], task.Skill)
		assert.Equal(t, wantTypes[i], task.Type)
		assert.Equal(t, core.UserID("u1"), task.UserID)
		assert.Equal(t, "2026-08-29", task.Date)
		assert.False(t, task.Completed)
		assert.Nil(t, task.Score)
		assert.Nil(t, task.CompletedAt)
	}
}

func TestDailyTasksCountClamped(t *testing.T) {
	cases := []struct {
		minutes int
		want    int
	}{
		{10, 3},  // floor(1) clamped up
		{30, 3},  // exactly 3
		{45, 4},  // floor(4.5)
		{50, 5},  // exactly 5
		{120, 5}, // clamped down
	}
	for _, tc := range cases {
		g := testGenerator()
		tasks, err := g.DailyTasks(core.Profile{
			ID:           "u1",
			Skills:       []string{"Python"},
			Level:        core.LevelBeginner,
			DailyMinutes: tc.minutes,
		})
		require.NoError(t, err)
		assert.Len(t, tasks, tc.want, "dailyMinutes=%d", tc.minutes)
	}
}

func TestDurationAndPointsFormulas(t *testing.T) {
	assert.Equal(t, 20, Duration(core.TaskVideo, core.LevelAdvanced))    // round(15*1.3)
	assert.Equal(t, 60, Points(core.TaskVideo, core.LevelAdvanced))      // round(40*1.5)
	assert.Equal(t, 8, Duration(core.TaskArticle, core.LevelBeginner))   // round(10*0.8)
	assert.Equal(t, 30, Points(core.TaskArticle, core.LevelBeginner))    // round(30*1.0)
	assert.Equal(t, 25, Duration(core.TaskExercise, core.LevelIntermediate))
	assert.Equal(t, 72, Points(core.TaskExercise, core.LevelIntermediate)) // round(60*1.2)
	assert.Equal(t, 10, Duration(core.TaskQuiz, core.LevelAdvanced))       // round(8*1.3)
	assert.Equal(t, 60, Points(core.TaskQuiz, core.LevelIntermediate))     // round(50*1.2)
}

func TestDailyTasksUniqueIDs(t *testing.T) {
	g := New(WithClock(func() time.Time { return time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC) }))
	tasks, err := g.DailyTasks(core.Profile{
		ID:           "u1",
		Skills:       []string{"Go"},
		Level:        core.LevelAdvanced,
		DailyMinutes: 60,
	})
	require.NoError(t, err)
	seen := map[string]struct{}{}
	for _, task := range tasks {
		_, dup := seen[task.ID]
		require.False(t, dup, "duplicate id %s", task.ID)
		seen[task.ID] = struct{}{}
	}
}

func TestTitleFallbackForUnknownSkill(t *testing.T) {
	g := testGenerator()
	tasks, err := g.DailyTasks(core.Profile{
		ID:           "u1",
		Skills:       []string{"Quantum Computing"},
		Level:        core.LevelAdvanced,
		DailyMinutes: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "Quantum Computing Video - Advanced Level", tasks[0].Title)
}

func TestTitleDrawnFromPool(t *testing.T) {
	g := testGenerator()
	tasks, err := g.DailyTasks(core.Profile{
		ID:           "u1",
		Skills:       []string{"Python"},
		Level:        core.LevelIntermediate,
		DailyMinutes: 30,
	})
	require.NoError(t, err)
	assert.Contains(t, titlePools["Python"][core.TaskVideo], tasks[0].Title)
}

func TestDailyTasksPreconditions(t *testing.T) {
	g := testGenerator()
	_, err := g.DailyTasks(core.Profile{ID: "u1", DailyMinutes: 30})
	require.Error(t, err)
	_, err = g.DailyTasks(core.Profile{ID: "u1", Skills: []string{"Python"}})
	require.Error(t, err)
}
