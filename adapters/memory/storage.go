// Package memory provides the default in-process Storage implementation.
package memory

import (
	"context"
	"sync"
	"time"

	"skillsprint/core"
)

// Store is a concurrent in-memory Storage implementation.
type Store struct {
	users sync.Map // map[core.UserID]*userRecord
}

type userRecord struct {
	mu      sync.Mutex
	profile *core.Profile
	tasks   []core.Task
}

func New() *Store { return &Store{} }

func (s *Store) getOrCreate(user core.UserID) *userRecord {
	if v, ok := s.users.Load(user); ok {
		return v.(*userRecord)
	}
	actual, _ := s.users.LoadOrStore(user, &userRecord{})
	return actual.(*userRecord)
}

// lookup is the read-path accessor; unknown users never allocate a record.
func (s *Store) lookup(user core.UserID) (*userRecord, bool) {
	v, ok := s.users.Load(user)
	if !ok {
		return nil, false
	}
	return v.(*userRecord), true
}

func (s *Store) SaveProfile(_ context.Context, p core.Profile) error {
	rec := s.getOrCreate(p.ID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	cp := p.Clone()
	rec.profile = &cp
	return nil
}

func (s *Store) Profile(_ context.Context, user core.UserID) (core.Profile, error) {
	rec, ok := s.lookup(user)
	if !ok {
		return core.Profile{}, core.ErrProfileNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.profile == nil {
		return core.Profile{}, core.ErrProfileNotFound
	}
	return rec.profile.Clone(), nil
}

func (s *Store) AppendTasks(_ context.Context, user core.UserID, tasks []core.Task) error {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, t := range tasks {
		rec.tasks = append(rec.tasks, t.Clone())
	}
	return nil
}

func (s *Store) Tasks(_ context.Context, user core.UserID) ([]core.Task, error) {
	rec, ok := s.lookup(user)
	if !ok {
		return nil, nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]core.Task, 0, len(rec.tasks))
	for _, t := range rec.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *Store) TasksByDate(_ context.Context, user core.UserID, date string) ([]core.Task, error) {
	rec, ok := s.lookup(user)
	if !ok {
		return nil, nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var out []core.Task
	for _, t := range rec.tasks {
		if t.Date == date {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (s *Store) CompleteTask(_ context.Context, user core.UserID, taskID string, score *int, at time.Time) (core.Task, error) {
	rec, ok := s.lookup(user)
	if !ok {
		return core.Task{}, core.ErrTaskNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i := range rec.tasks {
		if rec.tasks[i].ID != taskID {
			continue
		}
		if rec.tasks[i].Completed {
			return core.Task{}, core.ErrTaskCompleted
		}
		rec.tasks[i].Completed = true
		rec.tasks[i].CompletedAt = &at
		if score != nil {
			v := *score
			rec.tasks[i].Score = &v
		}
		return rec.tasks[i].Clone(), nil
	}
	return core.Task{}, core.ErrTaskNotFound
}

func (s *Store) Reset(_ context.Context, user core.UserID) error {
	s.users.Delete(user)
	return nil
}
