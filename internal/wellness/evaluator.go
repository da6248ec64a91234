package wellness

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"mindfuel/internal/types"
)

// Report is the full result of evaluating one day.
type Report struct {
	Score   types.DailyWellnessScore `json:"score"`
	Alerts  []types.Alert            `json:"alerts"`
	Summary types.DailySummary       `json:"summary"`
}

// Evaluator computes scores and alerts from classified observations.
// It holds only immutable configuration and is safe for concurrent use.
type Evaluator struct {
	clock       types.Clock
	newID       func() string
	curated     CuratedApps
	composition Composition
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock sets the clock used to stamp alert creation times.
func WithClock(c types.Clock) Option {
	return func(e *Evaluator) { e.clock = c }
}

// WithIDGenerator sets the alert ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Evaluator) { e.newID = fn }
}

// WithCuratedApps replaces the curated harmful-apps table.
func WithCuratedApps(apps CuratedApps) Option {
	return func(e *Evaluator) { e.curated = apps }
}

// WithComposition sets the policy used by Alerts.
func WithComposition(c Composition) Option {
	return func(e *Evaluator) { e.composition = c }
}

// NewEvaluator returns an Evaluator with the default curated table and the
// most_severe composition policy unless overridden.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		clock:       types.RealClock{},
		newID:       newAlertID,
		curated:     DefaultCuratedApps(),
		composition: DefaultComposition,
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.composition.Valid() {
		e.composition = DefaultComposition
	}
	return e
}

func newAlertID() string {
	return "alert_" + uuid.NewString()
}

// Composition returns the configured policy.
func (e *Evaluator) Composition() Composition {
	return e.composition
}

// CuratedApp returns the curated entry for an exact identifier.
func (e *Evaluator) CuratedApp(identifier string) (CuratedApp, bool) {
	return e.curated.Lookup(identifier)
}

// WithPolicy returns a copy of the evaluator using a different composition.
func (e *Evaluator) WithPolicy(c Composition) *Evaluator {
	cp := *e
	if c.Valid() {
		cp.composition = c
	}
	return &cp
}

// ScreenTimeMultiplier returns the penalty applied for cumulative screen
// time across the day.
func ScreenTimeMultiplier(hours float64) float64 {
	switch {
	case hours > 8:
		return 0.70
	case hours > 6:
		return 0.85
	case hours > 4:
		return 0.95
	default:
		return 1.00
	}
}

// ComputeDailyScore returns the time-weighted mean wellness weight, penalized
// by total screen time and clamped to [0, 10]. An empty set, or one with no
// recorded time, scores a neutral 5.0.
//
// Unsanitized input still yields a bounded score: negative or non-finite
// times count as zero and weights are clamped into range. Sums are taken in
// a canonical order so any permutation of obs gives a bit-identical result.
func (e *Evaluator) ComputeDailyScore(obs []types.UsageObservation) types.DailyWellnessScore {
	result := types.DailyWellnessScore{
		Date:                     e.scoreDate(obs),
		Score:                    NeutralWeight,
		ContributingObservations: len(obs),
	}
	if len(obs) == 0 {
		return result
	}

	var total, weighted float64
	for _, o := range canonicalOrder(obs) {
		t := sanitizeSeconds(o.TimeSpentSeconds)
		total += t
		weighted += clampWeight(o.WellnessWeight) * t
	}
	result.TotalScreenTimeSeconds = total

	base := NeutralWeight
	if total > 0 {
		base = weighted / total
	}
	result.Score = clampWeight(base * ScreenTimeMultiplier(total/3600))
	return result
}

func (e *Evaluator) scoreDate(obs []types.UsageObservation) time.Time {
	var earliest time.Time
	for _, o := range obs {
		if o.WindowDate.IsZero() {
			continue
		}
		if earliest.IsZero() || o.WindowDate.Before(earliest) {
			earliest = o.WindowDate
		}
	}
	if earliest.IsZero() {
		earliest = e.clock.Now()
	}
	return types.DayStart(earliest)
}

func canonicalOrder(obs []types.UsageObservation) []types.UsageObservation {
	sorted := slices.Clone(obs)
	slices.SortFunc(sorted, func(a, b types.UsageObservation) int {
		return cmp.Or(
			cmp.Compare(a.AppIdentifier, b.AppIdentifier),
			a.WindowDate.Compare(b.WindowDate),
			cmp.Compare(a.TimeSpentSeconds, b.TimeSpentSeconds),
			cmp.Compare(a.WellnessWeight, b.WellnessWeight),
		)
	})
	return sorted
}

func sanitizeSeconds(s float64) float64 {
	if !(s > 0) || math.IsInf(s, 1) {
		return 0
	}
	return s
}

func clampWeight(w float64) float64 {
	switch {
	case math.IsNaN(w):
		return NeutralWeight
	case w < MinWeight:
		return MinWeight
	case w > MaxWeight:
		return MaxWeight
	default:
		return w
	}
}

// GenerateAlerts applies the category threshold rules. Each observation
// yields at most one alert; productivity, education, health, news, shopping,
// utilities and unknown apps never alert.
func (e *Evaluator) GenerateAlerts(obs []types.UsageObservation) []types.Alert {
	now := e.clock.Now()
	var alerts []types.Alert
	for _, o := range obs {
		if a := e.categoryAlert(o, now); a != nil {
			alerts = append(alerts, *a)
		}
	}
	return alerts
}

// GenerateCuratedAlerts applies the curated harmful-apps rules by exact
// identifier match.
func (e *Evaluator) GenerateCuratedAlerts(obs []types.UsageObservation) []types.Alert {
	now := e.clock.Now()
	var alerts []types.Alert
	for _, o := range obs {
		if a := e.curatedAlert(o, now); a != nil {
			alerts = append(alerts, *a)
		}
	}
	return alerts
}

// Alerts runs both profiles and combines them per the configured policy.
// Output follows input order.
func (e *Evaluator) Alerts(obs []types.UsageObservation) []types.Alert {
	now := e.clock.Now()
	var alerts []types.Alert
	for _, o := range obs {
		_, listed := e.curated.Lookup(o.AppIdentifier)
		var category, curated *types.Alert
		if e.composition != ComposeCuratedOnly {
			category = e.categoryAlert(o, now)
		}
		if e.composition != ComposeCategoryOnly {
			curated = e.curatedAlert(o, now)
		}
		alerts = append(alerts, e.composition.compose(category, curated, listed)...)
	}
	return alerts
}

func (e *Evaluator) categoryAlert(o types.UsageObservation, now time.Time) *types.Alert {
	rule, ok := ruleFor(o.Category)
	if !ok {
		return nil
	}
	minutes := o.Minutes()
	if !(minutes > rule.thresholdMinutes) {
		return nil
	}

	name := displayName(o)
	return &types.Alert{
		ID:               e.newID(),
		AppIdentifier:    o.AppIdentifier,
		AppDisplayName:   name,
		Title:            rule.title,
		Description:      rule.description(name, minutes),
		Recommendations:  rule.recommendations(name),
		TimeSpentSeconds: o.TimeSpentSeconds,
		Severity:         rule.severityFor(minutes),
		Profile:          types.ProfileCategory,
		CreatedAt:        now,
	}
}

func (e *Evaluator) curatedAlert(o types.UsageObservation, now time.Time) *types.Alert {
	app, ok := e.curated.Lookup(o.AppIdentifier)
	if !ok {
		return nil
	}
	minutes := o.Minutes()
	if !(minutes > app.ThresholdMinutes()) {
		return nil
	}

	return &types.Alert{
		ID:               e.newID(),
		AppIdentifier:    o.AppIdentifier,
		AppDisplayName:   app.Name,
		Title:            "Excessive " + app.Name + " Usage Detected",
		Description:      curatedDescription(app.Name, minutes),
		Recommendations:  append(types.Recommendations(nil), app.Recommendations...),
		TimeSpentSeconds: o.TimeSpentSeconds,
		Severity:         app.HarmLevel.Severity(),
		Profile:          types.ProfileCurated,
		CreatedAt:        now,
	}
}

func displayName(o types.UsageObservation) string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.AppIdentifier
}

// Evaluate validates obs and produces the score, composed alerts and
// summary for date. Validation failures are returned as a validation
// AppError; nothing is computed in that case.
func (e *Evaluator) Evaluate(date time.Time, obs []types.UsageObservation) (Report, error) {
	if err := Validate(obs); err != nil {
		return Report{}, err
	}

	score := e.ComputeDailyScore(obs)
	score.Date = types.DayStart(date)
	alerts := e.Alerts(obs)

	return Report{
		Score:   score,
		Alerts:  alerts,
		Summary: e.Summarize(date, obs, alerts),
	}, nil
}
