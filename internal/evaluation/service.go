// Package evaluation orchestrates a day of usage through the wellness engine:
// ingest, validate, score, alert, persist, publish and record metrics. Every
// surface (HTTP API, queue worker, CLI) goes through Service.
package evaluation

import (
	"context"
	"log/slog"
	"time"

	"mindfuel/internal/types"
	"mindfuel/internal/usage"
	"mindfuel/internal/wellness"
)

// Store persists observations, daily scores and alerts.
type Store interface {
	// SaveObservations replaces every observation stored for date.
	SaveObservations(ctx context.Context, date time.Time, obs []types.UsageObservation) error
	// SaveScore upserts the score for its date.
	SaveScore(ctx context.Context, score types.DailyWellnessScore) error
	SaveAlerts(ctx context.Context, alerts []types.Alert) error
	GetAlert(ctx context.Context, id string) (*types.Alert, error)
	ListAlerts(ctx context.Context, filter types.AlertFilter) ([]types.Alert, error)
	// DismissAlert marks the alert dismissed and returns the updated record.
	DismissAlert(ctx context.Context, id string) (*types.Alert, error)
	// ListScores returns scores with from <= date < to, oldest first.
	ListScores(ctx context.Context, from, to time.Time) ([]types.DailyWellnessScore, error)
}

// Publisher pushes interrupting alerts to the user's devices.
type Publisher interface {
	Publish(ctx context.Context, alerts []types.Alert) error
}

// Metrics records evaluation outcomes. Implementations handle their own
// failures.
type Metrics interface {
	RecordEvaluation(ctx context.Context, score types.DailyWellnessScore, alerts []types.Alert)
}

// Result is the outcome of evaluating one day.
type Result struct {
	Date         string                   `json:"date"`
	Policy       wellness.Composition     `json:"policy"`
	Observations []types.UsageObservation `json:"observations"`
	Score        types.DailyWellnessScore `json:"score"`
	Alerts       []types.Alert            `json:"alerts"`
	Summary      types.DailySummary       `json:"summary"`
	Persisted    bool                     `json:"persisted"`
}

// Classification is the classifier's verdict for one app.
type Classification struct {
	AppIdentifier  string               `json:"app_identifier"`
	Category       types.Category       `json:"category"`
	CategoryName   string               `json:"category_name"`
	WellnessWeight float64              `json:"wellness_weight"`
	Impact         types.WellnessImpact `json:"impact"`
}

// Service is the application layer over the wellness engine.
type Service struct {
	classifier usage.Classifier
	ingestor   *usage.Ingestor
	evaluator  *wellness.Evaluator
	store      Store
	publisher  Publisher
	metrics    Metrics
	source     usage.Source
	clock      types.Clock
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets where interrupting alerts are pushed.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSource sets the usage source read by SyncDay.
func WithSource(src usage.Source) Option {
	return func(s *Service) { s.source = src }
}

func WithClock(c types.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService wires the engine to a store. Without options, alerts are not
// published, metrics are dropped and SyncDay reads the fixed mock dataset.
func NewService(classifier usage.Classifier, evaluator *wellness.Evaluator, store Store, opts ...Option) *Service {
	s := &Service{
		classifier: classifier,
		ingestor:   usage.NewIngestor(classifier),
		evaluator:  evaluator,
		store:      store,
		publisher:  nopPublisher{},
		metrics:    nopMetrics{},
		source:     usage.NewFixedSource(),
		clock:      types.RealClock{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, []types.Alert) error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordEvaluation(context.Context, types.DailyWellnessScore, []types.Alert) {}

// Classify returns the category and weight the engine assigns to an app.
func (s *Service) Classify(appIdentifier, displayName string) Classification {
	category, weight := s.classifier.Classify(appIdentifier, displayName)
	return Classification{
		AppIdentifier:  appIdentifier,
		Category:       category,
		CategoryName:   category.DisplayName(),
		WellnessWeight: weight,
		Impact:         category.Impact(),
	}
}

// CuratedApp returns the harm profile for a listed app.
func (s *Service) CuratedApp(identifier string) (*wellness.CuratedApp, error) {
	app, ok := s.evaluator.CuratedApp(identifier)
	if !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeNotFoundCuratedApp,
			"app is not in the curated harmful-apps list", nil,
			map[string]any{"app_identifier": identifier})
	}
	return &app, nil
}

// evaluatorFor returns the evaluator for policy; empty means the configured
// default.
func (s *Service) evaluatorFor(policy string) (*wellness.Evaluator, error) {
	if policy == "" {
		return s.evaluator, nil
	}
	c, err := wellness.ParseComposition(policy)
	if err != nil {
		return nil, err
	}
	return s.evaluator.WithPolicy(c), nil
}

// EvaluateRaw classifies and evaluates a day without persisting anything.
func (s *Service) EvaluateRaw(ctx context.Context, date time.Time, raw []types.RawUsage, policy string) (*Result, error) {
	return s.evaluate(ctx, date, raw, policy)
}

func (s *Service) evaluate(ctx context.Context, date time.Time, raw []types.RawUsage, policy string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ev, err := s.evaluatorFor(policy)
	if err != nil {
		return nil, err
	}

	day := types.DayStart(date)
	obs := s.ingestor.Ingest(day, raw)
	report, err := ev.Evaluate(day, obs)
	if err != nil {
		return nil, err
	}
	return &Result{
		Date:         day.Format(types.DateLayout),
		Policy:       ev.Composition(),
		Observations: obs,
		Score:        report.Score,
		Alerts:       report.Alerts,
		Summary:      report.Summary,
	}, nil
}

// ProcessDay evaluates a day and persists the outcome. The day's observations
// and score replace any earlier run; alerts are appended. Interrupting alerts
// are published. Publish and metrics failures are logged, not returned.
func (s *Service) ProcessDay(ctx context.Context, date time.Time, raw []types.RawUsage, policy string) (*Result, error) {
	res, err := s.evaluate(ctx, date, raw, policy)
	if err != nil {
		return nil, err
	}
	day := res.Score.Date

	if err := s.store.SaveObservations(ctx, day, res.Observations); err != nil {
		return nil, err
	}
	if err := s.store.SaveScore(ctx, res.Score); err != nil {
		return nil, err
	}
	if err := s.store.SaveAlerts(ctx, res.Alerts); err != nil {
		return nil, err
	}
	res.Persisted = true

	s.logger.InfoContext(ctx, "day evaluated",
		"date", res.Date,
		"observations", len(res.Observations),
		"score", res.Score.Score,
		"alerts", len(res.Alerts),
		"policy", string(res.Policy),
	)

	if urgent := Interrupting(res.Alerts); len(urgent) > 0 {
		if err := s.publisher.Publish(ctx, urgent); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish alerts",
				"date", res.Date,
				"count", len(urgent),
				"error", err,
			)
		}
	}
	s.metrics.RecordEvaluation(ctx, res.Score, res.Alerts)

	return res, nil
}

// SyncDay pulls the day's usage from the configured source and processes it.
func (s *Service) SyncDay(ctx context.Context, date time.Time, policy string) (*Result, error) {
	raw, err := s.source.DailyUsage(ctx, types.DayStart(date))
	if err != nil {
		s.logger.WarnContext(ctx, "usage source failed",
			"date", types.DayStart(date).Format(types.DateLayout),
			"error", err,
		)
		return nil, err
	}
	return s.ProcessDay(ctx, date, raw, policy)
}

// Interrupting returns the alerts that should be surfaced immediately.
func Interrupting(alerts []types.Alert) []types.Alert {
	var out []types.Alert
	for _, a := range alerts {
		if a.Severity.Interrupts() {
			out = append(out, a)
		}
	}
	return out
}

// ListAlerts returns stored alerts matching filter, newest first.
func (s *Service) ListAlerts(ctx context.Context, filter types.AlertFilter) ([]types.Alert, error) {
	if filter.MinSeverity != "" && !filter.MinSeverity.Valid() {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidField,
			"unknown severity", nil, map[string]any{"min_severity": string(filter.MinSeverity)})
	}
	filter.Limit = filter.EffectiveLimit()
	return s.store.ListAlerts(ctx, filter)
}

// GetAlert returns one stored alert.
func (s *Service) GetAlert(ctx context.Context, id string) (*types.Alert, error) {
	return s.store.GetAlert(ctx, id)
}

// DismissAlert marks an alert dismissed. Dismissing twice is not an error.
func (s *Service) DismissAlert(ctx context.Context, id string) (*types.Alert, error) {
	a, err := s.store.DismissAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "alert dismissed", "alert_id", id)
	return a, nil
}

// ListScores returns stored scores for days in [from, to].
func (s *Service) ListScores(ctx context.Context, from, to time.Time) ([]types.DailyWellnessScore, error) {
	start, end := types.DayStart(from), types.DayStart(to).AddDate(0, 0, 1)
	if !start.Before(end) {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidDate,
			"from must not be after to", nil,
			map[string]any{"from": start.Format(types.DateLayout), "to": types.DayStart(to).Format(types.DateLayout)})
	}
	return s.store.ListScores(ctx, start, end)
}

// ScoresFor returns the stored scores inside tf, relative to now.
func (s *Service) ScoresFor(ctx context.Context, tf types.Timeframe) ([]types.DailyWellnessScore, error) {
	start, end := tf.Range(s.clock.Now())
	return s.store.ListScores(ctx, start, end)
}
