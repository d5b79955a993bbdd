package sqlx_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	libsqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	storage "skillsprint/adapters/sqlx"
	"skillsprint/core"
)

func newMockStore(t *testing.T) (*storage.Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	xdb := storage.NewWithDB(libsqlx.NewDb(db, "postgres"), storage.DriverPostgres)
	cleanup := func() {
		_ = db.Close()
	}
	return xdb, mock, cleanup
}

var taskCols = []string{"id", "user_id", "seq", "date", "title", "type", "duration", "completed", "points", "skill", "score", "completed_at"}

func TestSQLMock_SaveProfile_Insert(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs("u1", "alice@example.com", "Alice", `["Python"]`, "Beginner",
			30, 0, 0, `["First Steps"]`, "Zen", int64(40), 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	p := core.Profile{
		ID:             "u1",
		Email:          "alice@example.com",
		Name:           "Alice",
		Skills:         []string{"Python"},
		Level:          core.LevelBeginner,
		DailyMinutes:   30,
		Badges:         []string{core.BadgeFirstSteps},
		Theme:          core.ThemeZen,
		TotalPoints:    40,
		CompletedTasks: 1,
		Updated:        time.Now().UTC(),
	}
	require.NoError(t, store.SaveProfile(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_SaveProfile_Update(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`UPDATE profiles SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := core.Profile{ID: "u1", Skills: []string{}, Badges: []string{}}
	require.NoError(t, store.SaveProfile(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Profile_NotFound(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .* FROM profiles`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Profile(context.Background(), "ghost")
	require.ErrorIs(t, err, core.ErrProfileNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_AppendTasks(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(seq\), 0\) FROM tasks`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(2))
	mock.ExpectExec(`INSERT INTO tasks`).
		WithArgs("t-3", "u1", int64(3), "2026-08-29", "Python Basics: Variables", "Video",
			15, false, 40, "Python", nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tasks := []core.Task{{
		ID: "t-3", UserID: "u1", Date: "2026-08-29",
		Title: "Python Basics: Variables", Type: core.TaskVideo,
		Duration: 15, Points: 40, Skill: "Python",
	}}
	require.NoError(t, store.AppendTasks(context.Background(), "u1", tasks))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_TasksByDate(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .* FROM tasks WHERE user_id = .* AND date = .* ORDER BY seq`).
		WithArgs("u1", "2026-08-29").
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow("t-1", "u1", 1, "2026-08-29", "Python Basics: Variables", "Video", 15, false, 40, "Python", nil, nil).
			AddRow("t-2", "u1", 2, "2026-08-29", "Python Fundamentals Quiz", "Quiz", 8, true, 50, "Python", 90, time.Now()))

	tasks, err := store.TasksByDate(context.Background(), "u1", "2026-08-29")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, core.TaskVideo, tasks[0].Type)
	require.Nil(t, tasks[0].Score)
	require.True(t, tasks[1].Completed)
	require.NotNil(t, tasks[1].Score)
	require.Equal(t, 90, *tasks[1].Score)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_CompleteTask(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM tasks WHERE user_id = .* AND id = `).
		WithArgs("u1", "t-1").
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow("t-1", "u1", 1, "2026-08-29", "Python Fundamentals Quiz", "Quiz", 8, false, 50, "Python", nil, nil))
	mock.ExpectExec(`UPDATE tasks SET completed`).
		WithArgs(true, int64(85), sqlmock.AnyArg(), "u1", "t-1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	score := 85
	at := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	task, err := store.CompleteTask(context.Background(), "u1", "t-1", &score, at)
	require.NoError(t, err)
	require.True(t, task.Completed)
	require.NotNil(t, task.Score)
	require.Equal(t, 85, *task.Score)
	require.NotNil(t, task.CompletedAt)
	require.True(t, task.CompletedAt.Equal(at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_CompleteTask_AlreadyCompleted(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM tasks WHERE user_id = .* AND id = `).
		WithArgs("u1", "t-1").
		WillReturnRows(sqlmock.NewRows(taskCols).
			AddRow("t-1", "u1", 1, "2026-08-29", "Python Fundamentals Quiz", "Quiz", 8, true, 50, "Python", 90, time.Now()))
	mock.ExpectRollback()

	_, err := store.CompleteTask(context.Background(), "u1", "t-1", nil, time.Now())
	require.ErrorIs(t, err, core.ErrTaskCompleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_CompleteTask_NotFound(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM tasks WHERE user_id = .* AND id = `).
		WithArgs("u1", "missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := store.CompleteTask(context.Background(), "u1", "missing", nil, time.Now())
	require.ErrorIs(t, err, core.ErrTaskNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Reset(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tasks`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM profiles`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Reset(context.Background(), "u1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
