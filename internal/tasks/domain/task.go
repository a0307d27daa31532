package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidStatus is returned when parsing a status outside the enum.
	ErrInvalidStatus = errors.New("domain: invalid task status")
	ErrEmptyTitle    = errors.New("domain: task title is required")
)

// TaskStatus is a closed enum. The zero value is StatusInProgress so that
// omitted statuses default the same way they do on the wire.
type TaskStatus uint8

const (
	StatusInProgress TaskStatus = iota
	StatusDone
)

var statusNames = [...]string{
	StatusInProgress: "in-progress",
	StatusDone:       "done",
}

func (s TaskStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("TaskStatus(%d)", uint8(s))
}

func (s TaskStatus) Valid() bool { return int(s) < len(statusNames) }

// ParseTaskStatus maps a wire string onto the enum.
func ParseTaskStatus(v string) (TaskStatus, error) {
	for i, name := range statusNames {
		if name == v {
			return TaskStatus(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, v)
}

func (s TaskStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(s))
	}
	return json.Marshal(s.String())
}

func (s *TaskStatus) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, b)
	}
	parsed, err := ParseTaskStatus(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value stores the status as its string name.
func (s TaskStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(s))
	}
	return s.String(), nil
}

func (s *TaskStatus) Scan(src any) error {
	var v string
	switch t := src.(type) {
	case string:
		v = t
	case []byte:
		v = string(t)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidStatus, src)
	}
	parsed, err := ParseTaskStatus(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Task is a unit of work owned by exactly one user. UserID is fixed at
// creation time.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      TaskStatus
	UserID      int64
}

// TaskInput carries the mutable fields accepted on create and update.
type TaskInput struct {
	Title       string
	Description *string
	Status      TaskStatus
}
