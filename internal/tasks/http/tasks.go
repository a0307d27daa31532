package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/tasks/internal/tasks/domain"
	"github.com/aussiebroadwan/tasks/internal/tasks/service"
	"github.com/aussiebroadwan/tasks/pkg/httpx"
	"github.com/aussiebroadwan/tasks/pkg/tasksdk"
)

// TasksHandler serves the /tasks endpoints. Every route sits behind
// AuthnMiddleware.
type TasksHandler struct {
	TaskService *service.TaskService
}

// HandleCreate handles POST /tasks/
//
//	@Summary		Create a task
//	@Description	Creates a task owned by the caller. Status defaults to "in-progress".
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.TaskRequest	true	"title, description, status"
//	@Success		200		{object}	tasksdk.Task
//	@Failure		400		{object}	tasksdk.APIError	"Invalid request"
//	@Failure		401		{object}	tasksdk.APIError	"Invalid token"
//	@Router			/tasks/ [post].
func (h *TasksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	username, ok := httpx.UsernameFromContext(r.Context())
	if !ok {
		tasksdk.ErrInvalidToken.WriteError(w)
		return
	}

	in, apiErr := decodeTaskRequest(w, r)
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	task, err := h.TaskService.Create(r.Context(), username, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTask(task))
}

// HandleList handles GET /tasks/
//
//	@Summary		List tasks
//	@Description	Lists the caller's tasks ordered by id, optionally filtered by status.
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(in-progress, done)
//	@Success		200		{array}		tasksdk.Task
//	@Failure		400		{object}	tasksdk.APIError	"Invalid status"
//	@Failure		401		{object}	tasksdk.APIError	"Invalid token"
//	@Router			/tasks/ [get].
func (h *TasksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	username, ok := httpx.UsernameFromContext(r.Context())
	if !ok {
		tasksdk.ErrInvalidToken.WriteError(w)
		return
	}

	var filter *domain.TaskStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			tasksdk.ErrInvalidStatus.WriteError(w)
			return
		}
		filter = &status
	}

	tasks, err := h.TaskService.List(r.Context(), username, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tasksdk.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTask(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /tasks/{id}
//
//	@Summary		Get a task
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Task id"
//	@Success		200	{object}	tasksdk.Task
//	@Failure		401	{object}	tasksdk.APIError	"Invalid token"
//	@Failure		403	{object}	tasksdk.APIError	"Not authorized to access this task"
//	@Failure		404	{object}	tasksdk.APIError	"Task not found"
//	@Router			/tasks/{id} [get].
func (h *TasksHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	username, id, ok := taskTarget(w, r)
	if !ok {
		return
	}

	task, err := h.TaskService.Get(r.Context(), username, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTask(task))
}

// HandleUpdate handles PUT /tasks/{id}
//
//	@Summary		Replace a task
//	@Description	Replaces title, description and status. Omitted description is cleared; omitted status becomes "in-progress".
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Task id"
//	@Param			request	body		tasksdk.TaskRequest	true	"title, description, status"
//	@Success		200		{object}	tasksdk.Task
//	@Failure		400		{object}	tasksdk.APIError	"Invalid request"
//	@Failure		401		{object}	tasksdk.APIError	"Invalid token"
//	@Failure		403		{object}	tasksdk.APIError	"Not authorized to access this task"
//	@Failure		404		{object}	tasksdk.APIError	"Task not found"
//	@Router			/tasks/{id} [put].
func (h *TasksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	username, id, ok := taskTarget(w, r)
	if !ok {
		return
	}

	in, apiErr := decodeTaskRequest(w, r)
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	task, err := h.TaskService.Update(r.Context(), username, id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTask(task))
}

// HandleDelete handles DELETE /tasks/{id}
//
//	@Summary		Delete a task
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Task id"
//	@Success		200	{object}	tasksdk.DataResponse
//	@Failure		401	{object}	tasksdk.APIError	"Invalid token"
//	@Failure		403	{object}	tasksdk.APIError	"Not authorized to access this task"
//	@Failure		404	{object}	tasksdk.APIError	"Task not found"
//	@Router			/tasks/{id} [delete].
func (h *TasksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	username, id, ok := taskTarget(w, r)
	if !ok {
		return
	}

	if err := h.TaskService.Delete(r.Context(), username, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tasksdk.DataResponse{Data: "Task deleted successfully"})
}

// taskTarget resolves the caller and the {id} path value, writing the error
// response itself when either is unusable.
func taskTarget(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	username, ok := httpx.UsernameFromContext(r.Context())
	if !ok {
		tasksdk.ErrInvalidToken.WriteError(w)
		return "", 0, false
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		tasksdk.NewAPIError(http.StatusBadRequest, "Invalid task id").WriteError(w)
		return "", 0, false
	}
	return username, id, true
}

func decodeTaskRequest(w http.ResponseWriter, r *http.Request) (domain.TaskInput, *tasksdk.APIError) {
	var req tasksdk.TaskRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		return domain.TaskInput{}, tasksdk.NewAPIError(http.StatusBadRequest, "Invalid JSON in request body")
	}

	status := domain.StatusInProgress
	if req.Status != "" {
		parsed, err := domain.ParseTaskStatus(req.Status)
		if err != nil {
			return domain.TaskInput{}, tasksdk.ErrInvalidStatus
		}
		status = parsed
	}

	return domain.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
	}, nil
}

func toTask(t domain.Task) tasksdk.Task {
	return tasksdk.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status.String(),
	}
}
