package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/tasks/internal/tasks/domain"
	"github.com/aussiebroadwan/tasks/internal/tasks/store"
	"github.com/aussiebroadwan/tasks/pkg/metricsx"
	"github.com/aussiebroadwan/tasks/pkg/slogx"
)

var (
	ErrTaskNotFound = errors.New("task_not_found")
	ErrForbidden    = errors.New("forbidden")
)

// TaskService scopes every task operation to the authenticated username.
type TaskService struct {
	Store   store.Store
	Metrics *metricsx.Metrics
}

func (s *TaskService) Create(ctx context.Context, username string, in domain.TaskInput) (domain.Task, error) {
	if err := validateInput(in); err != nil {
		return domain.Task{}, err
	}

	user, err := lookupUser(ctx, s.Store.Users(), username)
	if err != nil {
		return domain.Task{}, err
	}

	task, err := s.Store.Tasks().CreateTask(ctx, user.ID, in)
	if err != nil {
		return domain.Task{}, err
	}

	slogx.FromContext(ctx).Info("task created", slog.Int64("task_id", task.ID))
	return task, nil
}

// List returns the caller's tasks, optionally only those in status.
func (s *TaskService) List(ctx context.Context, username string, status *domain.TaskStatus) ([]domain.Task, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, domain.ErrInvalidStatus)
	}

	user, err := lookupUser(ctx, s.Store.Users(), username)
	if err != nil {
		return nil, err
	}
	return s.Store.Tasks().ListTasksByUser(ctx, user.ID, status)
}

func (s *TaskService) Get(ctx context.Context, username string, id int64) (domain.Task, error) {
	task, _, err := s.authorize(ctx, s.Store, username, id)
	return task, err
}

// Update replaces title, description and status. The owner is unchanged.
func (s *TaskService) Update(ctx context.Context, username string, id int64, in domain.TaskInput) (domain.Task, error) {
	if err := validateInput(in); err != nil {
		return domain.Task{}, err
	}

	var out domain.Task
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, _, err := s.authorize(ctx, tx, username, id); err != nil {
			return err
		}

		updated, err := tx.Tasks().UpdateTask(ctx, id, in)
		if err != nil {
			return mapTaskErr(err)
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}

	slogx.FromContext(ctx).Info("task updated", slog.Int64("task_id", id))
	return out, nil
}

func (s *TaskService) Delete(ctx context.Context, username string, id int64) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, _, err := s.authorize(ctx, tx, username, id); err != nil {
			return err
		}
		return mapTaskErr(tx.Tasks().DeleteTask(ctx, id))
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("task deleted", slog.Int64("task_id", id))
	return nil
}

// repos is the part of store.Store and store.Tx that authorize needs.
type repos interface {
	Users() store.Users
	Tasks() store.Tasks
}

// authorize loads the task and then its caller. Existence is checked before
// ownership so a missing id is always ErrTaskNotFound.
func (s *TaskService) authorize(
	ctx context.Context,
	r repos,
	username string,
	taskID int64,
) (domain.Task, domain.User, error) {
	task, err := r.Tasks().GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, domain.User{}, mapTaskErr(err)
	}

	user, err := lookupUser(ctx, r.Users(), username)
	if err != nil {
		return domain.Task{}, domain.User{}, err
	}

	if task.UserID != user.ID {
		s.Metrics.OwnershipDenied()
		slogx.FromContext(ctx).Warn("task access denied",
			slog.Int64("task_id", taskID),
			slog.Int64("user_id", user.ID),
		)
		return domain.Task{}, domain.User{}, ErrForbidden
	}
	return task, user, nil
}

// lookupUser maps a vanished user row to ErrUnauthorized; the token outlived
// the account.
func lookupUser(ctx context.Context, users store.Users, username string) (domain.User, error) {
	user, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUnauthorized
		}
		return domain.User{}, err
	}
	return user, nil
}

func mapTaskErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}

func validateInput(in domain.TaskInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, domain.ErrEmptyTitle)
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, domain.ErrInvalidStatus)
	}
	return nil
}
