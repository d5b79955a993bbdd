package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"skillsprint/core"
)

// Quiz score bonuses layered on top of a quiz task's base points.
const (
	bonusScoreGreat = 30 // score >= 90
	bonusScoreGood  = 20 // score >= 80
	bonusScoreOK    = 10 // score >= 70
)

// Progress advances a fixed notch per completion, slightly more for quizzes.
const (
	progressPerTask = 2
	progressPerQuiz = 3
	maxProgress     = 100
)

// LearnService is the application controller: every profile and task
// mutation funnels through it, which serializes updates as single
// read-compute-replace transitions over Storage.
type LearnService struct {
	storage Storage
	bus     *EventBus
	gen     TaskGenerator
	clock   func() time.Time
	locks   sync.Map // map[core.UserID]*sync.Mutex
}

// ServiceOption configures a LearnService.
type ServiceOption func(*LearnService)

// WithServiceClock overrides the wall clock, used by tests to pin days.
func WithServiceClock(clock func() time.Time) ServiceOption {
	return func(s *LearnService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewLearnService wires storage, the event bus, and the task generator.
func NewLearnService(storage Storage, bus *EventBus, gen TaskGenerator, opts ...ServiceOption) *LearnService {
	if storage == nil || bus == nil || gen == nil {
		panic("NewLearnService requires non-nil storage, bus, and generator")
	}
	s := &LearnService{
		storage: storage,
		bus:     bus,
		gen:     gen,
		clock:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnboardRequest carries the fields collected by the onboarding flow.
type OnboardRequest struct {
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Skills       []string   `json:"skills"`
	Level        core.Level `json:"experience_level"`
	DailyMinutes int        `json:"daily_minutes"`
	Theme        core.Theme `json:"theme"`
}

func (r OnboardRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if len(core.NormalizeSkills(r.Skills)) == 0 {
		return errors.New("at least one skill is required")
	}
	if r.DailyMinutes <= 0 {
		return errors.New("daily time budget must be positive")
	}
	return core.ValidateLevel(r.Level)
}

// Onboard creates a fresh profile and its first day's task batch.
func (s *LearnService) Onboard(ctx context.Context, req OnboardRequest) (core.Profile, []core.Task, error) {
	if err := req.validate(); err != nil {
		return core.Profile{}, nil, err
	}
	theme := req.Theme
	if theme == "" {
		theme = core.ThemeZen
	}
	now := s.clock()
	p := core.Profile{
		ID:           core.UserID(uuid.NewString()),
		Email:        req.Email,
		Name:         req.Name,
		Skills:       core.NormalizeSkills(req.Skills),
		Level:        req.Level,
		DailyMinutes: req.DailyMinutes,
		Badges:       []string{},
		Theme:        theme,
		Updated:      now,
	}

	tasks, err := s.gen.DailyTasks(p)
	if err != nil {
		return core.Profile{}, nil, fmt.Errorf("generate initial tasks: %w", err)
	}
	if err := s.storage.SaveProfile(ctx, p); err != nil {
		return core.Profile{}, nil, err
	}
	if err := s.storage.AppendTasks(ctx, p.ID, tasks); err != nil {
		return core.Profile{}, nil, err
	}
	s.bus.Publish(ctx, core.NewTasksAssigned(p.ID, now.Format(core.DateLayout), len(tasks)))
	return p, tasks, nil
}

// lockUser serializes mutations for one user. Every read-compute-replace
// path takes this before its first storage read so concurrent calls cannot
// lose profile updates or double-generate a day's batch.
func (s *LearnService) lockUser(user core.UserID) func() {
	v, _ := s.locks.LoadOrStore(user, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Profile returns the stored profile.
func (s *LearnService) Profile(ctx context.Context, user core.UserID) (core.Profile, error) {
	user, err := core.NormalizeUserID(user)
	if err != nil {
		return core.Profile{}, err
	}
	return s.storage.Profile(ctx, user)
}

// History returns the user's full task history. An unknown user is
// core.ErrProfileNotFound, matching Profile.
func (s *LearnService) History(ctx context.Context, user core.UserID) ([]core.Task, error) {
	user, err := core.NormalizeUserID(user)
	if err != nil {
		return nil, err
	}
	if _, err := s.storage.Profile(ctx, user); err != nil {
		return nil, err
	}
	return s.storage.Tasks(ctx, user)
}

// DailyTasks returns today's batch, generating it first when the user has
// none for the day. At most one batch per (user, day) can ever exist.
func (s *LearnService) DailyTasks(ctx context.Context, user core.UserID) ([]core.Task, error) {
	user, err := core.NormalizeUserID(user)
	if err != nil {
		return nil, err
	}
	unlock := s.lockUser(user)
	defer unlock()

	p, err := s.storage.Profile(ctx, user)
	if err != nil {
		return nil, err
	}

	today := s.clock().Format(core.DateLayout)
	tasks, err := s.storage.TasksByDate(ctx, user, today)
	if err != nil {
		return nil, err
	}
	if len(tasks) > 0 {
		return tasks, nil
	}

	tasks, err = s.gen.DailyTasks(p)
	if err != nil {
		return nil, fmt.Errorf("generate daily tasks: %w", err)
	}
	if err := s.storage.AppendTasks(ctx, user, tasks); err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, core.NewTasksAssigned(user, today, len(tasks)))
	return tasks, nil
}

// CompletionResult describes the outcome of a task or quiz completion.
type CompletionResult struct {
	Task          core.Task    `json:"task"`
	Profile       core.Profile `json:"profile"`
	PointsAwarded int          `json:"points_awarded"`
	NewBadges     []core.Badge `json:"new_badges,omitempty"`
}

// CompleteTask marks a non-quiz task (or a quiz without a score) completed
// and applies points, progress, streak, and badge updates.
func (s *LearnService) CompleteTask(ctx context.Context, user core.UserID, taskID string) (CompletionResult, error) {
	return s.complete(ctx, user, taskID, nil)
}

// SubmitQuiz records a quiz result. Score is a percentage in [0,100]; high
// scores earn bonus points on top of the task's base award.
func (s *LearnService) SubmitQuiz(ctx context.Context, user core.UserID, taskID string, score int) (CompletionResult, error) {
	if score < 0 || score > 100 {
		return CompletionResult{}, errors.New("score must be between 0 and 100")
	}
	return s.complete(ctx, user, taskID, &score)
}

func (s *LearnService) complete(ctx context.Context, user core.UserID, taskID string, score *int) (CompletionResult, error) {
	user, err := core.NormalizeUserID(user)
	if err != nil {
		return CompletionResult{}, err
	}
	unlock := s.lockUser(user)
	defer unlock()

	p, err := s.storage.Profile(ctx, user)
	if err != nil {
		return CompletionResult{}, err
	}

	now := s.clock()
	task, err := s.storage.CompleteTask(ctx, user, taskID, score, now)
	if err != nil {
		return CompletionResult{}, err
	}
	tasks, err := s.storage.Tasks(ctx, user)
	if err != nil {
		return CompletionResult{}, err
	}

	points := task.Points
	notch := progressPerTask
	if score != nil {
		points += scoreBonus(*score)
		notch = progressPerQuiz
	}

	prevStreak := p.Streak
	p.TotalPoints += int64(points)
	p.CompletedTasks++
	p.Progress = min(maxProgress, p.Progress+notch)
	p.Streak = core.StreakDays(tasks, now)
	p.Updated = now

	newBadges := core.EvaluateBadges(p, tasks, now)
	for _, b := range newBadges {
		p.Badges = append(p.Badges, b.Name)
	}

	if err := s.storage.SaveProfile(ctx, p); err != nil {
		return CompletionResult{}, err
	}

	s.bus.Publish(ctx, core.NewTaskCompleted(user, task))
	s.bus.Publish(ctx, core.NewPointsAdded(user, int64(points), p.TotalPoints))
	if p.Streak != prevStreak {
		s.bus.Publish(ctx, core.NewStreakChanged(user, p.Streak))
	}
	for _, b := range newBadges {
		s.bus.Publish(ctx, core.NewBadgeEarned(user, b.Name))
	}

	return CompletionResult{Task: task, Profile: p, PointsAwarded: points, NewBadges: newBadges}, nil
}

func scoreBonus(score int) int {
	switch {
	case score >= 90:
		return bonusScoreGreat
	case score >= 80:
		return bonusScoreGood
	case score >= 70:
		return bonusScoreOK
	default:
		return 0
	}
}

// SettingsUpdate carries a partial profile edit; nil fields keep the stored
// value.
type SettingsUpdate struct {
	Name         *string     `json:"name,omitempty"`
	Skills       []string    `json:"skills,omitempty"`
	Level        *core.Level `json:"experience_level,omitempty"`
	DailyMinutes *int        `json:"daily_minutes,omitempty"`
	Theme        *core.Theme `json:"theme,omitempty"`
}

// UpdateSettings applies a partial edit to the profile.
func (s *LearnService) UpdateSettings(ctx context.Context, user core.UserID, upd SettingsUpdate) (core.Profile, error) {
	user, err := core.NormalizeUserID(user)
	if err != nil {
		return core.Profile{}, err
	}
	unlock := s.lockUser(user)
	defer unlock()

	p, err := s.storage.Profile(ctx, user)
	if err != nil {
		return core.Profile{}, err
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return core.Profile{}, errors.New("name cannot be empty")
		}
		p.Name = *upd.Name
	}
	if upd.Skills != nil {
		skills := core.NormalizeSkills(upd.Skills)
		if len(skills) == 0 {
			return core.Profile{}, errors.New("at least one skill is required")
		}
		p.Skills = skills
	}
	if upd.Level != nil {
		if err := core.ValidateLevel(*upd.Level); err != nil {
			return core.Profile{}, err
		}
		p.Level = *upd.Level
	}
	if upd.DailyMinutes != nil {
		if *upd.DailyMinutes <= 0 {
			return core.Profile{}, errors.New("daily time budget must be positive")
		}
		p.DailyMinutes = *upd.DailyMinutes
	}
	if upd.Theme != nil {
		p.Theme = *upd.Theme
	}
	p.Updated = s.clock()

	if err := s.storage.SaveProfile(ctx, p); err != nil {
		return core.Profile{}, err
	}
	return p, nil
}

// Badges returns the catalog with Earned set from the user's profile.
func (s *LearnService) Badges(ctx context.Context, user core.UserID) ([]core.Badge, error) {
	p, err := s.Profile(ctx, user)
	if err != nil {
		return nil, err
	}
	badges := core.Catalog()
	for i := range badges {
		badges[i].Earned = p.HasBadge(badges[i].Name)
	}
	return badges, nil
}

// Reset drops the profile and the entire task history.
func (s *LearnService) Reset(ctx context.Context, user core.UserID) error {
	user, err := core.NormalizeUserID(user)
	if err != nil {
		return err
	}
	unlock := s.lockUser(user)
	defer unlock()
	return s.storage.Reset(ctx, user)
}

// Subscribe registers an event handler on the service bus.
func (s *LearnService) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return s.bus.Subscribe(typ, handler)
}

// Publish forwards an event to the bus.
func (s *LearnService) Publish(ctx context.Context, ev core.Event) {
	s.bus.Publish(ctx, ev)
}

// Close stops the event bus.
func (s *LearnService) Close() { s.bus.Close() }
