package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mindfuel/internal/core"
	"mindfuel/internal/types"
)

// HistoryService reads stored alerts and scores.
type HistoryService interface {
	ListAlerts(ctx context.Context, filter types.AlertFilter) ([]types.Alert, error)
	DismissAlert(ctx context.Context, id string) (*types.Alert, error)
	ListScores(ctx context.Context, from, to time.Time) ([]types.DailyWellnessScore, error)
	ScoresFor(ctx context.Context, tf types.Timeframe) ([]types.DailyWellnessScore, error)
}

// HistoryHandler serves alert and score history.
type HistoryHandler struct {
	service   HistoryService
	validator *core.Validator
	logger    *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(svc HistoryService, val *core.Validator, logger *slog.Logger) *HistoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryHandler{service: svc, validator: val, logger: logger}
}

// RegisterRoutes mounts:
//
//	GET  /alerts
//	POST /alerts/{id}/dismiss
//	GET  /scores
func (h *HistoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/alerts", h.HandleListAlerts)
	r.Post("/alerts/{id}/dismiss", h.HandleDismissAlert)
	r.Get("/scores", h.HandleListScores)
}

type alertQuery struct {
	IncludeDismissed bool   `json:"include_dismissed"`
	MinSeverity      string `json:"min_severity" validate:"severity"`
	Limit            int    `json:"limit" validate:"gte=0,lte=100"`
}

// HandleListAlerts handles GET /v1/alerts?include_dismissed=&min_severity=&limit=.
// Alerts come newest first; meta.pagination.has_more is set when the page is
// full.
func (h *HistoryHandler) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var query alertQuery
	if v := q.Get("include_dismissed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			core.Error(w, r, invalidParam("include_dismissed", v, "must be true or false"))
			return
		}
		query.IncludeDismissed = b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			core.Error(w, r, invalidParam("limit", v, "must be an integer"))
			return
		}
		query.Limit = n
	}
	query.MinSeverity = q.Get("min_severity")

	if err := h.validator.ValidateStruct(query); err != nil {
		core.Error(w, r, err)
		return
	}

	filter := types.AlertFilter{
		IncludeDismissed: query.IncludeDismissed,
		MinSeverity:      types.Severity(query.MinSeverity),
		Limit:            query.Limit,
	}
	alerts, err := h.service.ListAlerts(r.Context(), filter)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []types.Alert{}
	}

	// A full page means older alerts may remain.
	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: alerts,
		Meta: &types.ResponseMeta{
			Pagination: &types.PageInfo{HasMore: len(alerts) >= filter.EffectiveLimit()},
		},
	})
}

// HandleDismissAlert handles POST /v1/alerts/{id}/dismiss and returns the
// updated alert. Dismissing twice is not an error.
func (h *HistoryHandler) HandleDismissAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := h.service.DismissAlert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, alert)
}

type scoreQuery struct {
	Timeframe string `json:"timeframe" validate:"timeframe,excluded_with=From To"`
	From      string `json:"from" validate:"required_with=To,iso_date"`
	To        string `json:"to" validate:"required_with=From,iso_date"`
}

// HandleListScores handles GET /v1/scores with either ?timeframe= or
// ?from=&to= (inclusive days). Without parameters it returns this week.
func (h *HistoryHandler) HandleListScores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := scoreQuery{
		Timeframe: q.Get("timeframe"),
		From:      q.Get("from"),
		To:        q.Get("to"),
	}
	if err := h.validator.ValidateStruct(query); err != nil {
		core.Error(w, r, err)
		return
	}

	var (
		scores []types.DailyWellnessScore
		err    error
	)
	if query.From != "" {
		from, _ := types.ParseDate(query.From)
		to, _ := types.ParseDate(query.To)
		scores, err = h.service.ListScores(r.Context(), from, to)
	} else {
		tf := types.Timeframe(query.Timeframe)
		if tf == "" {
			tf = types.TimeframeThisWeek
		}
		scores, err = h.service.ScoresFor(r.Context(), tf)
	}
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if scores == nil {
		scores = []types.DailyWellnessScore{}
	}
	core.Data(w, r, http.StatusOK, scores)
}

func invalidParam(name, value, reason string) error {
	return types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidField,
		name+" "+reason, nil, map[string]any{"parameter": name, "value": value})
}
