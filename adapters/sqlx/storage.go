// Package sqlx implements Storage on a relational database via jmoiron/sqlx.
// Postgres and MySQL are supported; queries are written with ? placeholders
// and rebound per driver.
package sqlx

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"skillsprint/core"
)

// Driver selects the SQL dialect.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Config holds database connection configuration.
type Config struct {
	Driver          Driver
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns sensible defaults for database configuration.
func DefaultConfig(driver Driver) Config {
	return Config{
		Driver:          driver,
		MaxOpenConns:    16,
		MaxIdleConns:    4,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store implements the engine.Storage interface on a SQL database.
type Store struct {
	db     *sqlx.DB
	driver Driver
}

// New opens a database connection and verifies it with a ping.
func New(config Config) (*Store, error) {
	db, err := sqlx.Open(string(config.Driver), config.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewWithDB(db, config.Driver), nil
}

// NewWithDB creates a Store using an existing database handle (useful for testing).
func NewWithDB(db *sqlx.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// schema is portable DDL shared by both supported drivers.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id         VARCHAR(64) PRIMARY KEY,
	email           VARCHAR(255) NOT NULL,
	name            VARCHAR(255) NOT NULL,
	skills          VARCHAR(1024) NOT NULL,
	level           VARCHAR(32) NOT NULL,
	daily_minutes   INT NOT NULL,
	progress        INT NOT NULL,
	streak          INT NOT NULL,
	badges          VARCHAR(2048) NOT NULL,
	theme           VARCHAR(32) NOT NULL,
	total_points    BIGINT NOT NULL,
	completed_tasks INT NOT NULL,
	updated         TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id           VARCHAR(64) PRIMARY KEY,
	user_id      VARCHAR(64) NOT NULL,
	seq          BIGINT NOT NULL,
	date         VARCHAR(10) NOT NULL,
	title        VARCHAR(255) NOT NULL,
	type         VARCHAR(16) NOT NULL,
	duration     INT NOT NULL,
	completed    BOOLEAN NOT NULL,
	points       INT NOT NULL,
	skill        VARCHAR(64) NOT NULL,
	score        INT NULL,
	completed_at TIMESTAMP NULL
);

CREATE INDEX IF NOT EXISTS tasks_user_date ON tasks (user_id, date);
`

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

type profileRow struct {
	UserID         string    `db:"user_id"`
	Email          string    `db:"email"`
	Name           string    `db:"name"`
	Skills         string    `db:"skills"`
	Level          string    `db:"level"`
	DailyMinutes   int       `db:"daily_minutes"`
	Progress       int       `db:"progress"`
	Streak         int       `db:"streak"`
	Badges         string    `db:"badges"`
	Theme          string    `db:"theme"`
	TotalPoints    int64     `db:"total_points"`
	CompletedTasks int       `db:"completed_tasks"`
	Updated        time.Time `db:"updated"`
}

func (r profileRow) toProfile() (core.Profile, error) {
	var skills, badges []string
	if err := json.Unmarshal([]byte(r.Skills), &skills); err != nil {
		return core.Profile{}, fmt.Errorf("decode skills: %w", err)
	}
	if err := json.Unmarshal([]byte(r.Badges), &badges); err != nil {
		return core.Profile{}, fmt.Errorf("decode badges: %w", err)
	}
	return core.Profile{
		ID:             core.UserID(r.UserID),
		Email:          r.Email,
		Name:           r.Name,
		Skills:         skills,
		Level:          core.Level(r.Level),
		DailyMinutes:   r.DailyMinutes,
		Progress:       r.Progress,
		Streak:         r.Streak,
		Badges:         badges,
		Theme:          core.Theme(r.Theme),
		TotalPoints:    r.TotalPoints,
		CompletedTasks: r.CompletedTasks,
		Updated:        r.Updated,
	}, nil
}

type taskRow struct {
	ID          string        `db:"id"`
	UserID      string        `db:"user_id"`
	Seq         int64         `db:"seq"`
	Date        string        `db:"date"`
	Title       string        `db:"title"`
	Type        string        `db:"type"`
	Duration    int           `db:"duration"`
	Completed   bool          `db:"completed"`
	Points      int           `db:"points"`
	Skill       string        `db:"skill"`
	Score       sql.NullInt64 `db:"score"`
	CompletedAt sql.NullTime  `db:"completed_at"`
}

func (r taskRow) toTask() core.Task {
	t := core.Task{
		ID:        r.ID,
		UserID:    core.UserID(r.UserID),
		Date:      r.Date,
		Title:     r.Title,
		Type:      core.TaskType(r.Type),
		Duration:  r.Duration,
		Completed: r.Completed,
		Points:    r.Points,
		Skill:     r.Skill,
	}
	if r.Score.Valid {
		v := int(r.Score.Int64)
		t.Score = &v
	}
	if r.CompletedAt.Valid {
		at := r.CompletedAt.Time.UTC()
		t.CompletedAt = &at
	}
	return t
}

func (s *Store) SaveProfile(ctx context.Context, p core.Profile) error {
	skills, err := json.Marshal(p.Skills)
	if err != nil {
		return fmt.Errorf("encode skills: %w", err)
	}
	badges, err := json.Marshal(p.Badges)
	if err != nil {
		return fmt.Errorf("encode badges: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	q := s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = ?)`)
	if err := tx.GetContext(ctx, &exists, q, string(p.ID)); err != nil {
		return fmt.Errorf("check profile: %w", err)
	}

	if exists {
		q = s.db.Rebind(`UPDATE profiles SET email = ?, name = ?, skills = ?, level = ?,
			daily_minutes = ?, progress = ?, streak = ?, badges = ?, theme = ?,
			total_points = ?, completed_tasks = ?, updated = ? WHERE user_id = ?`)
		_, err = tx.ExecContext(ctx, q,
			p.Email, p.Name, string(skills), string(p.Level),
			p.DailyMinutes, p.Progress, p.Streak, string(badges), string(p.Theme),
			p.TotalPoints, p.CompletedTasks, p.Updated.UTC(), string(p.ID))
	} else {
		q = s.db.Rebind(`INSERT INTO profiles (user_id, email, name, skills, level,
			daily_minutes, progress, streak, badges, theme, total_points, completed_tasks, updated)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		_, err = tx.ExecContext(ctx, q,
			string(p.ID), p.Email, p.Name, string(skills), string(p.Level),
			p.DailyMinutes, p.Progress, p.Streak, string(badges), string(p.Theme),
			p.TotalPoints, p.CompletedTasks, p.Updated.UTC())
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Profile(ctx context.Context, user core.UserID) (core.Profile, error) {
	var row profileRow
	q := s.db.Rebind(`SELECT user_id, email, name, skills, level, daily_minutes, progress,
		streak, badges, theme, total_points, completed_tasks, updated
		FROM profiles WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &row, q, string(user)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Profile{}, core.ErrProfileNotFound
		}
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return row.toProfile()
}

func (s *Store) AppendTasks(ctx context.Context, user core.UserID, tasks []core.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	q := s.db.Rebind(`SELECT COALESCE(MAX(seq), 0) FROM tasks WHERE user_id = ?`)
	if err := tx.GetContext(ctx, &next, q, string(user)); err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	insert := s.db.Rebind(`INSERT INTO tasks (id, user_id, seq, date, title, type,
		duration, completed, points, skill, score, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, t := range tasks {
		next++
		var score sql.NullInt64
		if t.Score != nil {
			score = sql.NullInt64{Int64: int64(*t.Score), Valid: true}
		}
		var at sql.NullTime
		if t.CompletedAt != nil {
			at = sql.NullTime{Time: t.CompletedAt.UTC(), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insert,
			t.ID, string(user), next, t.Date, t.Title, string(t.Type),
			t.Duration, t.Completed, t.Points, t.Skill, score, at); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

const taskColumns = `id, user_id, seq, date, title, type, duration, completed, points, skill, score, completed_at`

func (s *Store) Tasks(ctx context.Context, user core.UserID) ([]core.Task, error) {
	var rows []taskRow
	q := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY seq`)
	if err := s.db.SelectContext(ctx, &rows, q, string(user)); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := make([]core.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toTask())
	}
	return out, nil
}

func (s *Store) TasksByDate(ctx context.Context, user core.UserID, date string) ([]core.Task, error) {
	var rows []taskRow
	q := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? AND date = ? ORDER BY seq`)
	if err := s.db.SelectContext(ctx, &rows, q, string(user), date); err != nil {
		return nil, fmt.Errorf("list tasks by date: %w", err)
	}
	var out []core.Task
	for _, r := range rows {
		out = append(out, r.toTask())
	}
	return out, nil
}

func (s *Store) CompleteTask(ctx context.Context, user core.UserID, taskID string, score *int, at time.Time) (core.Task, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Task{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row taskRow
	q := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? AND id = ?`)
	if err := tx.GetContext(ctx, &row, q, string(user), taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Task{}, core.ErrTaskNotFound
		}
		return core.Task{}, fmt.Errorf("get task: %w", err)
	}
	if row.Completed {
		return core.Task{}, core.ErrTaskCompleted
	}

	var scoreVal sql.NullInt64
	if score != nil {
		scoreVal = sql.NullInt64{Int64: int64(*score), Valid: true}
	}
	upd := s.db.Rebind(`UPDATE tasks SET completed = ?, score = ?, completed_at = ?
		WHERE user_id = ? AND id = ? AND completed = ?`)
	res, err := tx.ExecContext(ctx, upd, true, scoreVal, at.UTC(), string(user), taskID, false)
	if err != nil {
		return core.Task{}, fmt.Errorf("update task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Task{}, core.ErrTaskCompleted
	}
	if err := tx.Commit(); err != nil {
		return core.Task{}, fmt.Errorf("commit: %w", err)
	}

	row.Completed = true
	row.Score = scoreVal
	row.CompletedAt = sql.NullTime{Time: at.UTC(), Valid: true}
	return row.toTask(), nil
}

func (s *Store) Reset(ctx context.Context, user core.UserID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := s.db.Rebind(`DELETE FROM tasks WHERE user_id = ?`)
	if _, err := tx.ExecContext(ctx, q, string(user)); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	q = s.db.Rebind(`DELETE FROM profiles WHERE user_id = ?`)
	if _, err := tx.ExecContext(ctx, q, string(user)); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return tx.Commit()
}
