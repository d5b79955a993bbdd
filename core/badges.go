package core

import "time"

// Canonical badge names, used as keys against Profile.Badges.
const (
	BadgeFirstSteps        = "First Steps"
	BadgePythonBasics      = "Python Basics"
	BadgeDataExplorer      = "Data Explorer"
	BadgeConsistentLearner = "Consistent Learner"
	BadgeSpeedDemon        = "Speed Demon"
	BadgeQuizMaster        = "Quiz Master"
	BadgeKnowledgeSeeker   = "Knowledge Seeker"
	BadgeDedication        = "Dedication"
	BadgePerfectionist     = "Perfectionist"
	BadgeWellRounded       = "Well Rounded"
)

// BadgeRule binds a catalog entry to its eligibility predicate. Rules are
// independent: evaluation order never changes the outcome.
type BadgeRule struct {
	Badge     Badge
	Satisfied func(p Profile, s *badgeStats) bool
}

// badgeStats is the task history digested once per evaluation so each
// predicate stays a cheap lookup.
type badgeStats struct {
	completed      []Task
	now            time.Time
	bySkill        map[string]int
	distinctSkills map[string]struct{}
}

func newBadgeStats(tasks []Task, now time.Time) *badgeStats {
	s := &badgeStats{
		now:            now,
		bySkill:        make(map[string]int),
		distinctSkills: make(map[string]struct{}),
	}
	for _, t := range tasks {
		if !t.Completed {
			continue
		}
		s.completed = append(s.completed, t)
		s.bySkill[t.Skill]++
		s.distinctSkills[t.Skill] = struct{}{}
	}
	return s
}

func (s *badgeStats) completedWithin(d time.Duration) int {
	cutoff := s.now.Add(-d)
	n := 0
	for _, t := range s.completed {
		if t.CompletedAt != nil && !t.CompletedAt.Before(cutoff) {
			n++
		}
	}
	return n
}

func (s *badgeStats) quizzesScoredAtLeast(min int) int {
	n := 0
	for _, t := range s.completed {
		if t.Type == TaskQuiz && t.Score != nil && *t.Score >= min {
			n++
		}
	}
	return n
}

func (s *badgeStats) quizzesScoredExactly(score int) int {
	n := 0
	for _, t := range s.completed {
		if t.Type == TaskQuiz && t.Score != nil && *t.Score == score {
			n++
		}
	}
	return n
}

// coversAllSkills reports whether every selected skill has at least one
// completed task. Skills removed from the selection after completing tasks
// for them no longer count toward the requirement.
func (s *badgeStats) coversAllSkills(skills []string) bool {
	for _, skill := range skills {
		if _, ok := s.distinctSkills[skill]; !ok {
			return false
		}
	}
	return true
}

// catalog is the fixed list of ten badges with hardcoded rule bindings.
// There are no dynamic badge definitions.
var catalog = []BadgeRule{
	{
		Badge: Badge{ID: "1", Name: BadgeFirstSteps, Description: "Completed your first learning task", Icon: "🎯", Requirement: "1 task completed"},
		Satisfied: func(p Profile, _ *badgeStats) bool {
			return p.CompletedTasks >= 1
		},
	},
	{
		Badge: Badge{ID: "2", Name: BadgePythonBasics, Description: "Completed 5 Python fundamentals tasks", Icon: "🐍", Requirement: "5 Python tasks"},
		Satisfied: func(_ Profile, s *badgeStats) bool {
			return s.bySkill["Python"] >= 5
		},
	},
	{
		Badge: Badge{ID: "3", Name: BadgeDataExplorer, Description: "Mastered data analysis concepts", Icon: "📊", Requirement: "10 Data Analysis tasks"},
		Satisfied: func(_ Profile, s *badgeStats) bool {
			return s.bySkill["Data Analysis"] >= 10
		},
	},
	{
		Badge: Badge{ID: "4", Name: BadgeConsistentLearner, Description: "Maintained a 7-day learning streak", Icon: "🔥", Requirement: "7-day streak"},
		Satisfied: func(p Profile, _ *badgeStats) bool {
			return p.Streak >= 7
		},
	},
	{
		Badge: Badge{ID: "5", Name: BadgeSpeedDemon, Description: "Completed 20 tasks in one week", Icon: "⚡", Requirement: "20 tasks/week"},
		Satisfied: func(_ Profile, s *badgeStats) bool {
			return s.completedWithin(7*24*time.Hour) >= 20
		},
	},
	{
		Badge: Badge{ID: "6", Name: BadgeQuizMaster, Description: "Scored 90%+ on 5 quizzes", Icon: "🎯", Requirement: "5 high-scoring quizzes"},
		Satisfied: func(_ Profile, s *badgeStats) bool {
			return s.quizzesScoredAtLeast(90) >= 5
		},
	},
	{
		Badge: Badge{ID: "7", Name: BadgeKnowledgeSeeker, Description: "Completed 50 learning tasks", Icon: "📚", Requirement: "50 tasks completed"},
		Satisfied: func(p Profile, _ *badgeStats) bool {
			return p.CompletedTasks >= 50
		},
	},
	{
		Badge: Badge{ID: "8", Name: BadgeDedication, Description: "Maintained a 30-day learning streak", Icon: "💎", Requirement: "30-day streak"},
		Satisfied: func(p Profile, _ *badgeStats) bool {
			return p.Streak >= 30
		},
	},
	{
		Badge: Badge{ID: "9", Name: BadgePerfectionist, Description: "Achieved perfect scores on 3 quizzes", Icon: "⭐", Requirement: "3 perfect quiz scores"},
		Satisfied: func(_ Profile, s *badgeStats) bool {
			return s.quizzesScoredExactly(100) >= 3
		},
	},
	{
		Badge: Badge{ID: "10", Name: BadgeWellRounded, Description: "Completed tasks in all your selected skills", Icon: "🌟", Requirement: "Tasks in all skills"},
		Satisfied: func(p Profile, s *badgeStats) bool {
			return len(p.Skills) > 0 && s.coversAllSkills(p.Skills)
		},
	},
}

// Catalog returns copies of all badge definitions with Earned unset.
func Catalog() []Badge {
	out := make([]Badge, len(catalog))
	for i, r := range catalog {
		out[i] = r.Badge
	}
	return out
}

// EvaluateBadges scans the catalog against the post-update profile and full
// task history and returns the badges newly satisfied, each flagged
// earned=true. Badges already on the profile are skipped, so repeated
// evaluation over unchanged state returns nothing new once the caller
// records the names. Tasks with absent scores never satisfy score rules.
func EvaluateBadges(p Profile, tasks []Task, now time.Time) []Badge {
	stats := newBadgeStats(tasks, now)
	var earned []Badge
	for _, rule := range catalog {
		if p.HasBadge(rule.Badge.Name) {
			continue
		}
		if rule.Satisfied(p, stats) {
			b := rule.Badge
			b.Earned = true
			earned = append(earned, b)
		}
	}
	return earned
}
