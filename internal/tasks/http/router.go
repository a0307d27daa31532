package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tasks/internal/tasks/service"
	"github.com/aussiebroadwan/tasks/internal/tasks/session"
	"github.com/aussiebroadwan/tasks/internal/tasks/store"
	"github.com/aussiebroadwan/tasks/pkg/httpx"
	"github.com/aussiebroadwan/tasks/pkg/metricsx"
	"github.com/aussiebroadwan/tasks/pkg/slogx"

	_ "github.com/aussiebroadwan/tasks/api/tasks" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	sessions session.Cache
	metrics  *metricsx.Metrics

	AuthService *service.AuthService
	TaskService *service.TaskService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	sessions session.Cache,
	metrics *metricsx.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		sessions:     sessions,
		metrics:      metrics,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTasks()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tasks API
//	@version		0.1.0
//	@description	Multi-user task tracking. Users register, log in for a bearer token pair and manage their own tasks.
//	@description
//	@description				Tokens are HS256 JWTs. Access tokens last 30 minutes; refresh tokens last 24 hours.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tasks
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h under pattern with per-route metrics.
func (r *Router) handle(pattern string, h http.Handler) {
	r.Mux.Handle(pattern, r.metrics.Instrument(pattern, h))
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	r.handle("POST /auth/register", http.HandlerFunc(h.HandleRegister))
	r.handle("POST /auth/login", http.HandlerFunc(h.HandleLogin))
	r.handle("POST /auth/refresh", http.HandlerFunc(h.HandleRefresh))

	// Logout verifies the bearer itself so a bad token maps through the
	// service like the other auth endpoints.
	r.handle("POST /auth/logout", http.HandlerFunc(h.HandleLogout))
}

func (r *Router) registerTasks() {
	h := &TasksHandler{TaskService: r.TaskService}
	authn := httpx.AuthnMiddleware(r.AuthService)

	r.handle("POST /tasks/{$}", httpx.Chain(http.HandlerFunc(h.HandleCreate), authn))
	r.handle("GET /tasks/{$}", httpx.Chain(http.HandlerFunc(h.HandleList), authn))
	r.handle("GET /tasks/{id}", httpx.Chain(http.HandlerFunc(h.HandleGet), authn))
	r.handle("PUT /tasks/{id}", httpx.Chain(http.HandlerFunc(h.HandleUpdate), authn))
	r.handle("DELETE /tasks/{id}", httpx.Chain(http.HandlerFunc(h.HandleDelete), authn))
}

func (r *Router) registerSystem() {
	r.handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.sessions))

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}
