package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/skilltree/internal/domain/model"
	"github.com/okian/skilltree/pkg/logger"
)

const maxSettingBody = 64 << 10

// SettingsHandler serves application settings.
type SettingsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(deps Dependencies, l logger.Logger) *SettingsHandler {
	return &SettingsHandler{deps: deps, logger: l}
}

type settingView struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedBy *string         `json:"updatedBy"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type settingsResponse struct {
	Settings map[string]model.Setting `json:"settings"`
}

type settingResponse struct {
	Setting settingView `json:"setting"`
}

type updateSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// HandleList handles GET /api/v1/settings requests. Any authenticated
// caller may read settings.
func (h *SettingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "settings.list"
	ctx := r.Context()

	settings, err := h.deps.Settings(ctx)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	out := settingsResponse{Settings: make(map[string]model.Setting, len(settings))}
	for _, s := range settings {
		out.Settings[s.Key] = s
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleUpdate handles PUT /api/v1/settings/{key} requests.
func (h *SettingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "settings.update"
	ctx := r.Context()

	caller, ok := CallerFrom(ctx)
	if !ok {
		fail(ctx, h.logger, w, NewKind(op, ErrUnauthorized))
		return
	}

	var req updateSettingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSettingBody)).Decode(&req); err != nil {
		fail(ctx, h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Value) == 0 {
		fail(ctx, h.logger, w, WrapKind(op, ErrBadRequest, errors.New("value is required")))
		return
	}

	key := r.PathValue("key")
	s, err := h.deps.UpdateSetting(ctx, caller, key, req.Value)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, settingResponse{Setting: settingView{
		Key:       key,
		Value:     s.Value,
		UpdatedBy: s.UpdatedBy,
		UpdatedAt: s.UpdatedAt,
	}})
}
