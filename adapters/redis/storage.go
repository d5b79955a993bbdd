// Package redis implements Storage on a Redis backend.
//
// Data structure:
//   - user:{user_id}:profile -> JSON blob of the profile
//   - user:{user_id}:tasks   -> list of task JSON blobs, insertion order
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"skillsprint/core"
)

// Config holds Redis connection configuration.
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Store implements the engine.Storage interface backed by Redis.
type Store struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection with a ping.
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Store{client: client}, nil
}

// NewWithClient creates a Store using an existing Redis client (useful for testing).
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func profileKey(user core.UserID) string {
	return fmt.Sprintf("user:%s:profile", user)
}

func tasksKey(user core.UserID) string {
	return fmt.Sprintf("user:%s:tasks", user)
}

// completeTaskScript walks the task list and flips the matching task to
// completed exactly once. Running it server-side keeps the write-once
// invariant atomic across concurrent completions.
var completeTaskScript = redis.NewScript(`
	local key = KEYS[1]
	local id = ARGV[1]
	local at = ARGV[2]
	local score = ARGV[3]
	local n = redis.call('LLEN', key)
	for i = 0, n - 1 do
		local raw = redis.call('LINDEX', key, i)
		local task = cjson.decode(raw)
		if task.id == id then
			if task.completed then
				return redis.error_reply('task already completed')
			end
			task.completed = true
			task.completed_at = at
			if score ~= '' then
				task.score = tonumber(score)
			end
			local enc = cjson.encode(task)
			redis.call('LSET', key, i, enc)
			return enc
		end
	end
	return redis.error_reply('task not found')
`)

func (s *Store) SaveProfile(ctx context.Context, p core.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.client.Set(ctx, profileKey(p.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *Store) Profile(ctx context.Context, user core.UserID) (core.Profile, error) {
	data, err := s.client.Get(ctx, profileKey(user)).Bytes()
	if err == redis.Nil {
		return core.Profile{}, core.ErrProfileNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	var p core.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return core.Profile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return p, nil
}

func (s *Store) AppendTasks(ctx context.Context, user core.UserID, tasks []core.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	blobs := make([]interface{}, 0, len(tasks))
	for _, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal task: %w", err)
		}
		blobs = append(blobs, data)
	}
	if err := s.client.RPush(ctx, tasksKey(user), blobs...).Err(); err != nil {
		return fmt.Errorf("failed to append tasks: %w", err)
	}
	return nil
}

func (s *Store) Tasks(ctx context.Context, user core.UserID) ([]core.Task, error) {
	raw, err := s.client.LRange(ctx, tasksKey(user), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	out := make([]core.Task, 0, len(raw))
	for _, blob := range raw {
		var t core.Task
		if err := json.Unmarshal([]byte(blob), &t); err != nil {
			return nil, fmt.Errorf("unmarshal task: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) TasksByDate(ctx context.Context, user core.UserID, date string) ([]core.Task, error) {
	all, err := s.Tasks(ctx, user)
	if err != nil {
		return nil, err
	}
	var out []core.Task
	for _, t := range all {
		if t.Date == date {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) CompleteTask(ctx context.Context, user core.UserID, taskID string, score *int, at time.Time) (core.Task, error) {
	scoreArg := ""
	if score != nil {
		scoreArg = strconv.Itoa(*score)
	}
	result, err := completeTaskScript.Run(ctx, s.client,
		[]string{tasksKey(user)},
		taskID, at.UTC().Format(time.RFC3339Nano), scoreArg,
	).Result()
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "task not found"):
			return core.Task{}, core.ErrTaskNotFound
		case strings.Contains(err.Error(), "task already completed"):
			return core.Task{}, core.ErrTaskCompleted
		}
		return core.Task{}, fmt.Errorf("failed to complete task: %w", err)
	}

	blob, ok := result.(string)
	if !ok {
		return core.Task{}, fmt.Errorf("unexpected result type %T from Redis script", result)
	}
	var t core.Task
	if err := json.Unmarshal([]byte(blob), &t); err != nil {
		return core.Task{}, fmt.Errorf("unmarshal task: %w", err)
	}
	return t, nil
}

func (s *Store) Reset(ctx context.Context, user core.UserID) error {
	if err := s.client.Del(ctx, profileKey(user), tasksKey(user)).Err(); err != nil {
		return fmt.Errorf("failed to reset user: %w", err)
	}
	return nil
}
