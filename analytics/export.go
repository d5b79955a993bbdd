package analytics

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"skillsprint/core"
)

// Snapshot is the external progress-export format. Importing an exported
// snapshot reproduces point totals, badges, streak, and task history
// field-for-field.
type Snapshot struct {
	Version    int          `json:"version"`
	ExportedAt time.Time    `json:"exported_at"`
	Profile    core.Profile `json:"profile"`
	Tasks      []core.Task  `json:"tasks"`

	// Derived views included for external consumers; recomputed on import
	// rather than trusted.
	SkillProgress    map[string]float64 `json:"skill_progress"`
	AverageQuizScore int                `json:"average_quiz_score"`
	TotalMinutes     int                `json:"total_minutes"`
}

const snapshotVersion = 1

// NewSnapshot assembles an export snapshot from a profile and its history.
func NewSnapshot(p core.Profile, tasks []core.Task, now time.Time) Snapshot {
	return Snapshot{
		Version:          snapshotVersion,
		ExportedAt:       now,
		Profile:          p.Clone(),
		Tasks:            cloneTasks(tasks),
		SkillProgress:    SkillProgress(p.Skills, tasks),
		AverageQuizScore: AverageQuizScore(tasks),
		TotalMinutes:     TotalMinutes(tasks),
	}
}

// Export writes the snapshot as indented JSON.
func (s Snapshot) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ImportSnapshot reads a snapshot back, validating shape and recomputing
// the derived views from the imported history.
func ImportSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if s.Profile.ID == "" {
		return Snapshot{}, fmt.Errorf("snapshot has no profile")
	}
	s.SkillProgress = SkillProgress(s.Profile.Skills, s.Tasks)
	s.AverageQuizScore = AverageQuizScore(s.Tasks)
	s.TotalMinutes = TotalMinutes(s.Tasks)
	return s, nil
}

func cloneTasks(tasks []core.Task) []core.Task {
	out := make([]core.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
