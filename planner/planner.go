// Package planner produces a user's daily batch of learning tasks from
// their selected skills, experience level, and daily time budget.
package planner

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"skillsprint/core"
)

// Batch size bounds: one task per 10 budgeted minutes, clamped to [3, 5].
const (
	minTasks = 3
	maxTasks = 5
)

var baseDurations = map[core.TaskType]float64{
	core.TaskVideo:    15,
	core.TaskArticle:  10,
	core.TaskExercise: 25,
	core.TaskQuiz:     8,
}

var basePoints = map[core.TaskType]float64{
	core.TaskVideo:    40,
	core.TaskArticle:  30,
	core.TaskExercise: 60,
	core.TaskQuiz:     50,
}

var durationMultipliers = map[core.Level]float64{
	core.LevelBeginner:     0.8,
	core.LevelIntermediate: 1.0,
	core.LevelAdvanced:     1.3,
}

var pointMultipliers = map[core.Level]float64{
	core.LevelBeginner:     1.0,
	core.LevelIntermediate: 1.2,
	core.LevelAdvanced:     1.5,
}

// Generator builds daily task batches. Clock and random source are injected
// so batches are reproducible in tests; NewID guarantees uniqueness within
// and across batches.
type Generator struct {
	clock func() time.Time
	rng   *rand.Rand
	newID func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the wall clock.
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithRand sets a seeded random source for title selection.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithIDFunc overrides task id generation.
func WithIDFunc(newID func() string) Option {
	return func(g *Generator) {
		if newID != nil {
			g.newID = newID
		}
	}
}

// New creates a Generator with wall-clock time, a PCG random source, and
// UUID task ids.
func New(opts ...Option) *Generator {
	g := &Generator{
		clock: func() time.Time { return time.Now().UTC() },
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// DailyTasks generates the day's ordered task batch for the profile. The
// batch has clamp(floor(dailyMinutes/10), 3, 5) tasks; skills and types
// cycle by index. The function is pure apart from id and title randomness:
// it never touches storage, and the caller decides whether a batch for the
// day already exists.
func (g *Generator) DailyTasks(p core.Profile) ([]core.Task, error) {
	if len(p.Skills) == 0 {
		return nil, errors.New("profile has no skills selected")
	}
	if p.DailyMinutes <= 0 {
		return nil, errors.New("daily time budget must be positive")
	}

	count := p.DailyMinutes / 10
	if count < minTasks {
		count = minTasks
	}
	if count > maxTasks {
		count = maxTasks
	}

	date := g.clock().Format(core.DateLayout)
	tasks := make([]core.Task, 0, count)
	for i := 0; i < count; i++ {
		skill := p.Skills[i%len(p.Skills)]
		typ := core.TaskTypes[i%len(core.TaskTypes)]
		tasks = append(tasks, core.Task{
			ID:       g.newID(),
			UserID:   p.ID,
			Date:     date,
			Title:    g.title(skill, typ, p.Level),
			Type:     typ,
			Duration: scaled(baseDurations[typ], durationMultipliers[p.Level]),
			Points:   scaled(basePoints[typ], pointMultipliers[p.Level]),
			Skill:    skill,
		})
	}
	return tasks, nil
}

// Duration returns the assigned minutes for a (type, level) pair.
func Duration(typ core.TaskType, level core.Level) int {
	return scaled(baseDurations[typ], durationMultipliers[level])
}

// Points returns the award points for a (type, level) pair.
func Points(typ core.TaskType, level core.Level) int {
	return scaled(basePoints[typ], pointMultipliers[level])
}

func scaled(base, mult float64) int {
	if mult == 0 {
		mult = 1.0
	}
	return int(math.Round(base * mult))
}

// title picks uniformly from the static pool for the (skill, type) pair,
// falling back to a synthesized title for skills without a pool.
func (g *Generator) title(skill string, typ core.TaskType, level core.Level) string {
	pool, ok := titlePools[skill][typ]
	if !ok || len(pool) == 0 {
		return skill + " " + string(typ) + " - " + string(level) + " Level"
	}
	return pool[g.rng.IntN(len(pool))]
}
