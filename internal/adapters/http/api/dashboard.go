// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/skilltree/internal/domain/filter"
	"github.com/okian/skilltree/pkg/logger"
)

// DashboardHandler serves the hierarchy and summary views and the manager
// filter choices.
type DashboardHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps Dependencies, l logger.Logger) *DashboardHandler {
	return &DashboardHandler{deps: deps, logger: l}
}

// HandleHierarchy handles GET /api/v1/dashboard/hierarchy requests.
func (h *DashboardHandler) HandleHierarchy(w http.ResponseWriter, r *http.Request) {
	const op = "dashboard.hierarchy"
	ctx := r.Context()

	caller, ok := CallerFrom(ctx)
	if !ok {
		fail(ctx, h.logger, w, NewKind(op, ErrUnauthorized))
		return
	}
	forest, err := h.deps.Hierarchy(ctx, filter.FromValues(r.URL.Query()), caller)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: forest})
}

// HandleSummary handles GET /api/v1/dashboard/summary requests.
func (h *DashboardHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "dashboard.summary"
	ctx := r.Context()

	caller, ok := CallerFrom(ctx)
	if !ok {
		fail(ctx, h.logger, w, NewKind(op, ErrUnauthorized))
		return
	}
	summary, err := h.deps.Summary(ctx, filter.FromValues(r.URL.Query()), caller)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: summary})
}

// HandleManagers handles GET /api/v1/employees/managers requests.
func (h *DashboardHandler) HandleManagers(w http.ResponseWriter, r *http.Request) {
	const op = "dashboard.managers"
	ctx := r.Context()

	managers, err := h.deps.Managers(ctx)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: managers})
}
