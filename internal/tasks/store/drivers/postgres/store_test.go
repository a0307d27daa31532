package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/tasks/internal/tasks/domain"
	"github.com/aussiebroadwan/tasks/internal/tasks/store"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock
}

var taskColumns = []string{"id", "title", "description", "status", "user_id"}

func TestCreateUser(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(createUser)).
		WithArgs("alice", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	u, err := s.Users().CreateUser(context.Background(), "alice", "hash")
	require.NoError(t, err)
	require.Equal(t, domain.User{ID: 7, Username: "alice", PasswordHash: "hash"}, u)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicate(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(createUser)).
		WithArgs("alice", "hash").
		WillReturnError(&pq.Error{Code: uniqueViolation})

	_, err := s.Users().CreateUser(context.Background(), "alice", "hash")
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(getUserByUsername)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}))

	_, err := s.Users().GetUserByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetTaskNullDescription(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(getTask)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow(3, "T", nil, "done", 1))

	task, err := s.Tasks().GetTask(context.Background(), 3)
	require.NoError(t, err)
	require.Nil(t, task.Description)
	require.Equal(t, domain.StatusDone, task.Status)
	require.Equal(t, int64(1), task.UserID)
}

func TestListTasksByUserWithStatus(t *testing.T) {
	s, mock := newMock(t)
	status := domain.StatusInProgress

	mock.ExpectQuery(regexp.QuoteMeta(listTasksByUserAndState)).
		WithArgs(int64(1), "in-progress").
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(1, "a", "first", "in-progress", 1).
			AddRow(2, "b", nil, "in-progress", 1))

	tasks, err := s.Tasks().ListTasksByUser(context.Background(), 1, &status)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "first", *tasks[0].Description)
	require.Equal(t, int64(2), tasks[1].ID)
}

func TestListTasksByUserEmpty(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(listTasksByUser)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(taskColumns))

	tasks, err := s.Tasks().ListTasksByUser(context.Background(), 9, nil)
	require.NoError(t, err)
	require.NotNil(t, tasks)
	require.Empty(t, tasks)
}

func TestUpdateTaskNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(updateTask)).
		WithArgs("t", nil, "done", int64(5)).
		WillReturnRows(sqlmock.NewRows(taskColumns))

	_, err := s.Tasks().UpdateTask(context.Background(), 5, domain.TaskInput{Title: "t", Status: domain.StatusDone})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteTask(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(deleteTask)).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteTask)).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Tasks().DeleteTask(context.Background(), 1))
	require.ErrorIs(t, s.Tasks().DeleteTask(context.Background(), 2), store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxCommit(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(getTask)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow(1, "a", nil, "in-progress", 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteTask)).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.WithTx(context.Background(), func(tx store.Tx) error {
		if _, err := tx.Tasks().GetTask(context.Background(), 1); err != nil {
			return err
		}
		return tx.Tasks().DeleteTask(context.Background(), 1)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollback(t *testing.T) {
	s, mock := newMock(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.WithTx(context.Background(), func(store.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
