// Package handlers maps the MindFuel HTTP API onto the evaluation service.
// Each handler declares the narrow service interface it needs and mounts its
// routes on the /v1 router passed to RegisterRoutes.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mindfuel/internal/core"
	"mindfuel/internal/evaluation"
	"mindfuel/internal/types"
	"mindfuel/internal/wellness"
)

// AppService classifies apps and looks up curated harm information.
type AppService interface {
	Classify(appIdentifier, displayName string) evaluation.Classification
	CuratedApp(identifier string) (*wellness.CuratedApp, error)
}

// AppHandler serves the app catalog endpoints.
type AppHandler struct {
	service   AppService
	validator *core.Validator
	logger    *slog.Logger
}

// NewAppHandler creates an AppHandler.
func NewAppHandler(svc AppService, val *core.Validator, logger *slog.Logger) *AppHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppHandler{service: svc, validator: val, logger: logger}
}

// RegisterRoutes mounts:
//
//	POST /classify
//	GET  /apps/harm/{identifier}
func (h *AppHandler) RegisterRoutes(r chi.Router) {
	r.Post("/classify", h.HandleClassify)
	r.Get("/apps/harm/{identifier}", h.HandleHarmInfo)
}

type classifyRequest struct {
	AppIdentifier string `json:"app_identifier" validate:"required,max=255"`
	DisplayName   string `json:"display_name" validate:"max=255"`
}

// HandleClassify handles POST /v1/classify.
func (h *AppHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	core.Data(w, r, http.StatusOK, h.service.Classify(req.AppIdentifier, req.DisplayName))
}

// harmInfo is the curated entry as returned to clients.
type harmInfo struct {
	wellness.CuratedApp
	HarmDescription  string  `json:"harm_description"`
	ThresholdMinutes float64 `json:"threshold_minutes"`
}

// HandleHarmInfo handles GET /v1/apps/harm/{identifier}. Identifiers match
// exactly, so com.TikTok.tiktok is not com.tiktok.tiktok.
func (h *AppHandler) HandleHarmInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "identifier")
	if id == "" {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField, "identifier is required", nil))
		return
	}

	app, err := h.service.CuratedApp(id)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, harmInfo{
		CuratedApp:       *app,
		HarmDescription:  app.HarmLevel.Description(),
		ThresholdMinutes: app.ThresholdMinutes(),
	})
}
