package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/skilltree/internal/domain/model"
	"github.com/okian/skilltree/pkg/logger"
)

const maxViewBody = 64 << 10

// ViewsHandler serves saved views.
type ViewsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewViewsHandler creates a new saved views handler.
func NewViewsHandler(deps Dependencies, l logger.Logger) *ViewsHandler {
	return &ViewsHandler{deps: deps, logger: l}
}

type viewsResponse struct {
	Views []model.SavedView `json:"views"`
}

type viewResponse struct {
	View model.SavedView `json:"view"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createViewRequest struct {
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	IsShared    bool             `json:"is_shared"`
	State       *model.ViewState `json:"view_state"`
}

type updateViewRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	IsShared    *bool            `json:"is_shared"`
	State       *model.ViewState `json:"view_state"`
}

// HandleList handles GET /api/v1/views requests.
func (h *ViewsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "views.list"
	ctx := r.Context()

	caller, ok := CallerFrom(ctx)
	if !ok {
		fail(ctx, h.logger, w, NewKind(op, ErrUnauthorized))
		return
	}
	views, err := h.deps.Views(ctx, caller)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, viewsResponse{Views: views})
}

// HandleCreate handles POST /api/v1/views requests.
func (h *ViewsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "views.create"
	ctx := r.Context()

	caller, ok := CallerFrom(ctx)
	if !ok {
		fail(ctx, h.logger, w, NewKind(op, ErrUnauthorized))
		return
	}
	var req createViewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxViewBody)).Decode(&req); err != nil {
		fail(ctx, h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.State == nil {
		fail(ctx, h.logger, w, WrapKind(op, ErrBadRequest, errors.New("view_state is required and must be an object")))
		return
	}

	v, err := h.deps.CreateView(ctx, caller, model.SavedView{
		Name:        req.Name,
		Description: req.Description,
		IsShared:    req.IsShared,
		State:       *req.State,
	})
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, viewResponse{View: v})
}

// HandleUpdate handles PUT /api/v1/views/{id} requests. Omitted fields keep
// their stored values.
func (h *ViewsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "views.update"
	ctx := r.Context()

	caller, ok := CallerFrom(ctx)
	if !ok {
		fail(ctx, h.logger, w, NewKind(op, ErrUnauthorized))
		return
	}
	id, err := viewID(r)
	if err != nil {
		fail(ctx, h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	var req updateViewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxViewBody)).Decode(&req); err != nil {
		fail(ctx, h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}

	v, err := h.deps.UpdateView(ctx, caller, id, model.ViewPatch{
		Name:        req.Name,
		Description: req.Description,
		IsShared:    req.IsShared,
		State:       req.State,
	})
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{View: v})
}

// HandleDelete handles DELETE /api/v1/views/{id} requests.
func (h *ViewsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "views.delete"
	ctx := r.Context()

	caller, ok := CallerFrom(ctx)
	if !ok {
		fail(ctx, h.logger, w, NewKind(op, ErrUnauthorized))
		return
	}
	id, err := viewID(r)
	if err != nil {
		fail(ctx, h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.DeleteView(ctx, caller, id); err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Saved view deleted successfully"})
}

// HandleHierarchy handles GET /api/v1/views/{id}/hierarchy requests with the
// filters stored in the view.
func (h *ViewsHandler) HandleHierarchy(w http.ResponseWriter, r *http.Request) {
	const op = "views.hierarchy"
	ctx := r.Context()

	caller, ok := CallerFrom(ctx)
	if !ok {
		fail(ctx, h.logger, w, NewKind(op, ErrUnauthorized))
		return
	}
	id, err := viewID(r)
	if err != nil {
		fail(ctx, h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	forest, err := h.deps.ViewHierarchy(ctx, caller, id)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: forest})
}

func viewID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid view id %q", raw)
	}
	return id, nil
}
