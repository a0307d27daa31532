package sqlite

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/tasks/internal/tasks/domain"
	"github.com/aussiebroadwan/tasks/internal/tasks/store"
)

type usersRepo struct {
	q querier
}

const getUserByUsername = `SELECT id, username, password_hash FROM users WHERE username = ?`

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := r.q.QueryRowContext(ctx, getUserByUsername, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

const createUser = `INSERT INTO users (username, password_hash) VALUES (?, ?) RETURNING id`

func (r *usersRepo) CreateUser(ctx context.Context, username, passwordHash string) (domain.User, error) {
	var id int64
	if err := r.q.QueryRowContext(ctx, createUser, username, passwordHash).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, store.ErrAlreadyExists
		}
		return domain.User{}, fmt.Errorf("sqlite: create user: %w", err)
	}
	return domain.User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}
