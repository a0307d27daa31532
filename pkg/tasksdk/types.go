package tasksdk

// Task status values on the wire.
const (
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// ============================================================================
// Auth Types
// ============================================================================

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is returned by registration. The password hash never leaves
// the server.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// TokenResponse carries a bearer token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// MessageResponse is returned by logout.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// ============================================================================
// Task Types
// ============================================================================

// TaskRequest is the body of task create and update. An empty Status means
// StatusInProgress.
type TaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// Task is a task as returned by the API. The owner is not exposed.
type Task struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

// DataResponse is returned by task deletion.
type DataResponse struct {
	Data string `json:"data"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is served by /livez and /readyz. Checks is only set on
// /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency as "ok" or "error: <cause>".
type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
