package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tasks/internal/tasks/domain"
	"github.com/aussiebroadwan/tasks/internal/tasks/service"
	"github.com/aussiebroadwan/tasks/pkg/slogx"
	"github.com/aussiebroadwan/tasks/pkg/tasksdk"
)

// writeServiceError maps service errors onto API errors. Anything unknown is
// logged and reported as a 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		tasksdk.ErrUsernameTaken.WriteError(w)
	case errors.Is(err, domain.ErrEmptyTitle):
		tasksdk.ErrTitleRequired.WriteError(w)
	case errors.Is(err, domain.ErrInvalidStatus):
		tasksdk.ErrInvalidStatus.WriteError(w)
	case errors.Is(err, service.ErrInvalidRequest):
		tasksdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		tasksdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUnauthorized):
		tasksdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		tasksdk.ErrForbidden.WriteError(w)
	case errors.Is(err, service.ErrTaskNotFound):
		tasksdk.ErrTaskNotFound.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		tasksdk.ErrServerError.WriteError(w)
	}
}
