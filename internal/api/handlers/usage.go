package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mindfuel/internal/core"
	"mindfuel/internal/evaluation"
	"mindfuel/internal/types"
)

// UsageService evaluates and records daily usage.
type UsageService interface {
	EvaluateRaw(ctx context.Context, date time.Time, raw []types.RawUsage, policy string) (*evaluation.Result, error)
	ProcessDay(ctx context.Context, date time.Time, raw []types.RawUsage, policy string) (*evaluation.Result, error)
	SyncDay(ctx context.Context, date time.Time, policy string) (*evaluation.Result, error)
}

// UsageHandler serves evaluation and ingestion endpoints.
type UsageHandler struct {
	service   UsageService
	validator *core.Validator
	clock     types.Clock
	logger    *slog.Logger
}

// NewUsageHandler creates a UsageHandler. A nil clock uses the wall clock.
func NewUsageHandler(svc UsageService, val *core.Validator, clock types.Clock, logger *slog.Logger) *UsageHandler {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageHandler{service: svc, validator: val, clock: clock, logger: logger}
}

// RegisterRoutes mounts:
//
//	POST /wellness/evaluate
//	POST /usage/days
//	POST /usage/days/{date}/sync
func (h *UsageHandler) RegisterRoutes(r chi.Router) {
	r.Post("/wellness/evaluate", h.HandleEvaluate)
	r.Post("/usage/days", h.HandleRecordDay)
	r.Post("/usage/days/{date}/sync", h.HandleSyncDay)
}

// usageDayRequest carries one day of raw usage. Entry-level rules (identifier
// present, non-negative time, no duplicates) are enforced by the engine so
// every violation is reported with its index.
type usageDayRequest struct {
	Date   string           `json:"date" validate:"iso_date"`
	Policy string           `json:"policy" validate:"composition"`
	Usage  []types.RawUsage `json:"usage" validate:"max=1000"`
}

func (h *UsageHandler) decodeDay(w http.ResponseWriter, r *http.Request, requireDate bool) (usageDayRequest, time.Time, error) {
	var req usageDayRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		return req, time.Time{}, err
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return req, time.Time{}, err
	}

	if req.Date == "" {
		if requireDate {
			return req, time.Time{}, types.NewAppError(types.ErrCodeValidationMissingField, "date is required", nil)
		}
		return req, types.DayStart(h.clock.Now()), nil
	}
	day, err := types.ParseDate(req.Date)
	return req, day, err
}

// HandleEvaluate handles POST /v1/wellness/evaluate. Nothing is persisted;
// the date defaults to today.
func (h *UsageHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	req, day, err := h.decodeDay(w, r, false)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	res, err := h.service.EvaluateRaw(r.Context(), day, req.Usage, req.Policy)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, res)
}

// HandleRecordDay handles POST /v1/usage/days. It replaces the stored
// observations and score for the day and answers 201.
func (h *UsageHandler) HandleRecordDay(w http.ResponseWriter, r *http.Request) {
	req, day, err := h.decodeDay(w, r, true)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	res, err := h.service.ProcessDay(r.Context(), day, req.Usage, req.Policy)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusCreated, res)
}

// HandleSyncDay handles POST /v1/usage/days/{date}/sync?policy=. The day is
// pulled from the configured usage source.
func (h *UsageHandler) HandleSyncDay(w http.ResponseWriter, r *http.Request) {
	day, err := types.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	policy := r.URL.Query().Get("policy")

	res, err := h.service.SyncDay(r.Context(), day, policy)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	types.LoggerFromContext(r.Context(), h.logger).InfoContext(r.Context(), "usage day synced",
		"date", res.Date, "observations", len(res.Observations))
	core.Data(w, r, http.StatusOK, res)
}
