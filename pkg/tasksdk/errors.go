package tasksdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/tasks/pkg/httpx"
)

// APIError is the {"detail": "..."} error body used by every endpoint. The
// server writes it with WriteError; the client decodes it from non-2xx
// responses.
type APIError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Detail)
}

// Is matches on status code and detail so decoded errors compare equal to
// the predefined ones.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Detail == t.Detail
}

// WriteError writes the error as JSON. Invalid bearer tokens also get a
// WWW-Authenticate challenge.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	if e.StatusCode == http.StatusUnauthorized && e.Detail == ErrInvalidToken.Detail {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	httpx.WriteJSON(w, e.StatusCode, e)
}

var (
	ErrUsernameTaken = &APIError{
		StatusCode: http.StatusBadRequest,
		Detail:     "Username already registered",
	}

	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Detail:     "Invalid request",
	}

	ErrTitleRequired = &APIError{
		StatusCode: http.StatusBadRequest,
		Detail:     "Title is required",
	}

	ErrInvalidStatus = &APIError{
		StatusCode: http.StatusBadRequest,
		Detail:     "Invalid status",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Detail:     "Invalid credentials",
	}

	// ErrInvalidToken covers every bearer and refresh token failure. The
	// cause is never reported.
	ErrInvalidToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Detail:     "Invalid token",
	}

	ErrForbidden = &APIError{
		StatusCode: http.StatusForbidden,
		Detail:     "Not authorized to access this task",
	}

	ErrTaskNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Detail:     "Task not found",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Detail:     "Internal server error",
	}
)

// NewAPIError builds an error with a custom detail, typically a more
// specific validation message.
func NewAPIError(statusCode int, detail string) *APIError {
	return &APIError{StatusCode: statusCode, Detail: detail}
}

// parseErrorResponse turns a non-2xx response into an *APIError. Bodies that
// are not in the detail shape keep the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Detail == "" {
		apiErr.Detail = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
