package postgres

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/tasks/internal/tasks/domain"
	"github.com/aussiebroadwan/tasks/internal/tasks/store"
)

type tasksRepo struct {
	q querier
}

const getTask = `SELECT id, title, description, status, user_id FROM tasks WHERE id = $1`

func (r *tasksRepo) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	t, err := scanTask(r.q.QueryRowContext(ctx, getTask, id))
	if err != nil {
		return domain.Task{}, mapNotFound(err)
	}
	return t, nil
}

const (
	listTasksByUser         = `SELECT id, title, description, status, user_id FROM tasks WHERE user_id = $1 ORDER BY id`
	listTasksByUserAndState = `SELECT id, title, description, status, user_id FROM tasks WHERE user_id = $1 AND status = $2 ORDER BY id`
)

func (r *tasksRepo) ListTasksByUser(
	ctx context.Context,
	userID int64,
	status *domain.TaskStatus,
) ([]domain.Task, error) {
	query, args := listTasksByUser, []any{userID}
	if status != nil {
		query, args = listTasksByUserAndState, append(args, *status)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate tasks: %w", err)
	}
	return out, nil
}

const createTask = `INSERT INTO tasks (title, description, status, user_id) VALUES ($1, $2, $3, $4) RETURNING id`

func (r *tasksRepo) CreateTask(ctx context.Context, userID int64, in domain.TaskInput) (domain.Task, error) {
	var id int64
	err := r.q.QueryRowContext(ctx, createTask,
		in.Title,
		mapOptionalString(in.Description),
		in.Status,
		userID,
	).Scan(&id)
	if err != nil {
		return domain.Task{}, fmt.Errorf("postgres: create task: %w", err)
	}

	return domain.Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		UserID:      userID,
	}, nil
}

const updateTask = `UPDATE tasks SET title = $1, description = $2, status = $3 WHERE id = $4
RETURNING id, title, description, status, user_id`

func (r *tasksRepo) UpdateTask(ctx context.Context, id int64, in domain.TaskInput) (domain.Task, error) {
	t, err := scanTask(r.q.QueryRowContext(ctx, updateTask,
		in.Title,
		mapOptionalString(in.Description),
		in.Status,
		id,
	))
	if err != nil {
		return domain.Task{}, mapNotFound(err)
	}
	return t, nil
}

const deleteTask = `DELETE FROM tasks WHERE id = $1`

func (r *tasksRepo) DeleteTask(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, deleteTask, id)
	if err != nil {
		return fmt.Errorf("postgres: delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: delete task: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
