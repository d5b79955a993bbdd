// Package jsonfile persists all state to a single JSON document.
// Suitable for demos and small single-node deployments.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"skillsprint/core"
)

type userRecord struct {
	Profile *core.Profile `json:"profile,omitempty"`
	Tasks   []core.Task   `json:"tasks,omitempty"`
}

// Store keeps the full state in memory and rewrites the backing file on
// every mutation with a tmp-then-rename to keep the file consistent.
type Store struct {
	path string
	mu   sync.Mutex
	data map[core.UserID]*userRecord
}

func New(path string) (*Store, error) {
	s := &Store{path: path, data: map[core.UserID]*userRecord{}}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var raw map[string]*userRecord
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		s.data[core.UserID(k)] = v
	}
	return nil
}

func (s *Store) persist() error {
	raw := make(map[string]*userRecord, len(s.data))
	for k, v := range s.data {
		raw[string(k)] = v
	}
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) getOrCreate(user core.UserID) *userRecord {
	if rec, ok := s.data[user]; ok {
		return rec
	}
	rec := &userRecord{}
	s.data[user] = rec
	return rec
}

func (s *Store) SaveProfile(_ context.Context, p core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.getOrCreate(p.ID)
	cp := p.Clone()
	rec.Profile = &cp
	return s.persist()
}

func (s *Store) Profile(_ context.Context, user core.UserID) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[user]
	if !ok || rec.Profile == nil {
		return core.Profile{}, core.ErrProfileNotFound
	}
	return rec.Profile.Clone(), nil
}

func (s *Store) AppendTasks(_ context.Context, user core.UserID, tasks []core.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.getOrCreate(user)
	for _, t := range tasks {
		rec.Tasks = append(rec.Tasks, t.Clone())
	}
	return s.persist()
}

func (s *Store) Tasks(_ context.Context, user core.UserID) ([]core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[user]
	if !ok {
		return nil, nil
	}
	out := make([]core.Task, 0, len(rec.Tasks))
	for _, t := range rec.Tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *Store) TasksByDate(_ context.Context, user core.UserID, date string) ([]core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[user]
	if !ok {
		return nil, nil
	}
	var out []core.Task
	for _, t := range rec.Tasks {
		if t.Date == date {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (s *Store) CompleteTask(_ context.Context, user core.UserID, taskID string, score *int, at time.Time) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[user]
	if !ok {
		return core.Task{}, core.ErrTaskNotFound
	}
	for i := range rec.Tasks {
		if rec.Tasks[i].ID != taskID {
			continue
		}
		if rec.Tasks[i].Completed {
			return core.Task{}, core.ErrTaskCompleted
		}
		rec.Tasks[i].Completed = true
		rec.Tasks[i].CompletedAt = &at
		if score != nil {
			v := *score
			rec.Tasks[i].Score = &v
		}
		if err := s.persist(); err != nil {
			return core.Task{}, err
		}
		return rec.Tasks[i].Clone(), nil
	}
	return core.Task{}, core.ErrTaskNotFound
}

func (s *Store) Reset(_ context.Context, user core.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, user)
	return s.persist()
}
