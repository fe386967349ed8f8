// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/skilltree/internal/app"
	"github.com/okian/skilltree/internal/domain/filter"
	"github.com/okian/skilltree/internal/domain/model"
	"github.com/okian/skilltree/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// ResolveCaller maps the gateway identity headers to a Caller.
	ResolveCaller(ctx context.Context, email, role string) (model.Caller, error)

	// Read operations expose the dashboard views.
	Hierarchy(ctx context.Context, p filter.Params, caller model.Caller) ([]*model.HierarchyNode, error)
	Summary(ctx context.Context, p filter.Params, caller model.Caller) (service.Summary, error)

	Settings(ctx context.Context) ([]model.Setting, error)
	UpdateSetting(ctx context.Context, caller model.Caller, key string, value json.RawMessage) (model.Setting, error)

	// Saved views are named filter sets owned by one caller.
	Views(ctx context.Context, caller model.Caller) ([]model.SavedView, error)
	CreateView(ctx context.Context, caller model.Caller, v model.SavedView) (model.SavedView, error)
	UpdateView(ctx context.Context, caller model.Caller, id int64, p model.ViewPatch) (model.SavedView, error)
	DeleteView(ctx context.Context, caller model.Caller, id int64) error
	ViewHierarchy(ctx context.Context, caller model.Caller, id int64) ([]*model.HierarchyNode, error)

	// Managers lists the choices for the manager filter.
	Managers(ctx context.Context) ([]model.ManagerOption, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps   Dependencies
	logger logger.Logger

	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *DashboardHandler
	settingsHandler  *SettingsHandler
	viewsHandler     *ViewsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{deps: deps}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.dashboardHandler = NewDashboardHandler(deps, s.logger)
	s.settingsHandler = NewSettingsHandler(deps, s.logger)
	s.viewsHandler = NewViewsHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/v1/dashboard/hierarchy",
		MetricsMiddleware(s.caller(s.dashboardHandler.HandleHierarchy), "hierarchy"))
	mux.HandleFunc("GET /api/v1/dashboard/summary",
		MetricsMiddleware(s.caller(s.dashboardHandler.HandleSummary), "summary"))
	mux.HandleFunc("GET /api/v1/settings",
		MetricsMiddleware(s.caller(s.settingsHandler.HandleList), "settings"))
	mux.HandleFunc("PUT /api/v1/settings/{key}",
		MetricsMiddleware(s.caller(s.settingsHandler.HandleUpdate), "settings_update"))

	mux.HandleFunc("GET /api/v1/employees/managers",
		MetricsMiddleware(s.caller(s.dashboardHandler.HandleManagers), "managers"))

	mux.HandleFunc("GET /api/v1/views",
		MetricsMiddleware(s.caller(s.viewsHandler.HandleList), "views"))
	mux.HandleFunc("POST /api/v1/views",
		MetricsMiddleware(s.caller(s.viewsHandler.HandleCreate), "views_create"))
	mux.HandleFunc("PUT /api/v1/views/{id}",
		MetricsMiddleware(s.caller(s.viewsHandler.HandleUpdate), "views_update"))
	mux.HandleFunc("DELETE /api/v1/views/{id}",
		MetricsMiddleware(s.caller(s.viewsHandler.HandleDelete), "views_delete"))
	mux.HandleFunc("GET /api/v1/views/{id}/hierarchy",
		MetricsMiddleware(s.caller(s.viewsHandler.HandleHierarchy), "views_hierarchy"))
}

func (s *Server) caller(next http.HandlerFunc) http.HandlerFunc {
	return CallerMiddleware(s.deps, s.logger, next)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type dataResponse struct {
	Data any `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err and writes it. Server errors are logged and their
// details kept out of the response.
func fail(ctx context.Context, l logger.Logger, w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", logger.String("code", code), logger.Error(err))
		if status == http.StatusInternalServerError {
			err = ErrInternal
		}
	}
	writeError(w, status, code, err)
}
