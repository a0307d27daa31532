package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tasks/internal/tasks/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (postgres,
// sqlite) implement it and hand out sub-repositories so transactional and
// non-transactional callers share the same methods.
type Store interface {
	Users() Users
	Tasks() Tasks

	ApplyMigrations() error

	// WithTx runs fn inside a transaction on a single pooled connection.
	// A nil return commits; anything else rolls back. The connection is
	// released on every path.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the connection pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is the transaction-scoped view handed to WithTx callbacks. Nested
// transactions are not supported.
type Tx interface {
	Users() Users
	Tasks() Tasks
}

type Users interface {
	// GetUserByUsername is an exact, case-sensitive match.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a row and returns it with the generated id.
	// A duplicate username yields ErrAlreadyExists.
	CreateUser(ctx context.Context, username, passwordHash string) (domain.User, error)
}

type Tasks interface {
	GetTask(ctx context.Context, id int64) (domain.Task, error)

	// ListTasksByUser returns the user's tasks ordered by id, optionally
	// filtered to one status.
	ListTasksByUser(ctx context.Context, userID int64, status *domain.TaskStatus) ([]domain.Task, error)

	CreateTask(ctx context.Context, userID int64, in domain.TaskInput) (domain.Task, error)

	// UpdateTask rewrites title, description and status. The owner column is
	// never touched.
	UpdateTask(ctx context.Context, id int64, in domain.TaskInput) (domain.Task, error)

	DeleteTask(ctx context.Context, id int64) error
}
