package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aussiebroadwan/tasks/internal/tasks/domain"
	"github.com/stretchr/testify/require"
)

func TestParseTaskStatus(t *testing.T) {
	s, err := domain.ParseTaskStatus("in-progress")
	require.NoError(t, err)
	require.Equal(t, domain.StatusInProgress, s)

	s, err = domain.ParseTaskStatus("done")
	require.NoError(t, err)
	require.Equal(t, domain.StatusDone, s)

	for _, bad := range []string{"", "Done", "in_progress", "archived"} {
		_, err := domain.ParseTaskStatus(bad)
		require.ErrorIs(t, err, domain.ErrInvalidStatus, "input %q", bad)
	}
}

func TestTaskStatusZeroValueIsInProgress(t *testing.T) {
	var s domain.TaskStatus
	require.Equal(t, "in-progress", s.String())
}

func TestTaskStatusJSON(t *testing.T) {
	var body struct {
		Status domain.TaskStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"done"}`), &body))
	require.Equal(t, domain.StatusDone, body.Status)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"done"}`, string(out))

	require.ErrorIs(t, json.Unmarshal([]byte(`{"status":"nope"}`), &body), domain.ErrInvalidStatus)
	require.ErrorIs(t, json.Unmarshal([]byte(`{"status":1}`), &body), domain.ErrInvalidStatus)

	_, err = json.Marshal(domain.TaskStatus(7))
	require.Error(t, err)
}

func TestTaskStatusSQL(t *testing.T) {
	v, err := domain.StatusDone.Value()
	require.NoError(t, err)
	require.Equal(t, "done", v)

	var s domain.TaskStatus
	require.NoError(t, s.Scan([]byte("in-progress")))
	require.Equal(t, domain.StatusInProgress, s)
	require.NoError(t, s.Scan("done"))
	require.Equal(t, domain.StatusDone, s)
	require.ErrorIs(t, s.Scan(int64(1)), domain.ErrInvalidStatus)
	require.ErrorIs(t, s.Scan("later"), domain.ErrInvalidStatus)

	_, err = domain.TaskStatus(9).Value()
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}
