package types

import (
	"time"
)

// RawUsage is the per-app tally yielded by a usage-data source before
// classification. The source knows nothing about categories or weights.
// Date is set by sources; on the wire the day travels with the enclosing
// batch or request. Tallies are checked after classification, by
// wellness.Validate, so every violation carries its index.
type RawUsage struct {
	AppIdentifier    string    `json:"app_identifier"`
	DisplayName      string    `json:"display_name"`
	TimeSpentSeconds float64   `json:"time_spent_seconds"`
	SessionCount     int       `json:"session_count"`
	Date             time.Time `json:"-"`
}

// UsageObservation is one app's aggregated usage for a single day, already
// classified. It is the atomic unit the wellness engine consumes.
//
// Within a set fed to a single score computation, each
// (AppIdentifier, WindowDate) pair must be unique.
type UsageObservation struct {
	AppIdentifier    string    `json:"app_identifier" validate:"required"`
	DisplayName      string    `json:"display_name"`
	Category         Category  `json:"category" validate:"required"`
	WellnessWeight   float64   `json:"wellness_weight" validate:"finite,gte=0,lte=10"`
	TimeSpentSeconds float64   `json:"time_spent_seconds" validate:"finite,gte=0"`
	SessionCount     int       `json:"session_count" validate:"gte=0"`
	WindowDate       time.Time `json:"window_date"`
}

// Minutes returns the time spent in minutes.
func (o UsageObservation) Minutes() float64 {
	return o.TimeSpentSeconds / 60
}

// Alert is a generated wellness warning. Alerts are immutable values once
// produced; Dismissed only changes through a store-level transition that
// persists the copy returned by WithDismissed.
type Alert struct {
	ID               string          `json:"id"`
	AppIdentifier    string          `json:"app_identifier"`
	AppDisplayName   string          `json:"app_display_name"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Recommendations  Recommendations `json:"recommendations"`
	TimeSpentSeconds float64         `json:"time_spent_seconds"`
	Severity         Severity        `json:"severity"`
	Profile          AlertProfile    `json:"profile"`
	CreatedAt        time.Time       `json:"created_at"`
	Dismissed        bool            `json:"dismissed"`
}

// WithDismissed returns a copy of the alert marked as dismissed.
func (a Alert) WithDismissed() Alert {
	a.Recommendations = append(Recommendations(nil), a.Recommendations...)
	a.Dismissed = true
	return a
}

// AlertProfile names the rule set that produced an alert.
type AlertProfile string

const (
	ProfileCategory AlertProfile = "category"
	ProfileCurated  AlertProfile = "curated"
)

// DailyWellnessScore is the aggregate score for one day.
type DailyWellnessScore struct {
	Date                     time.Time `json:"date"`
	Score                    float64   `json:"score"`
	TotalScreenTimeSeconds   float64   `json:"total_screen_time_seconds"`
	ContributingObservations int       `json:"contributing_observations"`
}

// ScreenTimeHours returns the total screen time in hours.
func (s DailyWellnessScore) ScreenTimeHours() float64 {
	return s.TotalScreenTimeSeconds / 3600
}

// DailySummary is the presentation-oriented digest of a day.
type DailySummary struct {
	Date                   time.Time `json:"date"`
	Score                  float64   `json:"score"`
	TotalScreenTimeSeconds float64   `json:"total_screen_time_seconds"`
	TotalScreenTime        string    `json:"total_screen_time"`
	MostUsedApps           []string  `json:"most_used_apps"`
	PositiveAppsSeconds    float64   `json:"positive_apps_seconds"`
	NegativeAppsSeconds    float64   `json:"negative_apps_seconds"`
	AlertsTriggered        int       `json:"alerts_triggered"`
}

// AlertFilter narrows alert listings.
type AlertFilter struct {
	IncludeDismissed bool
	MinSeverity      Severity // empty means no floor
	Limit            int      // 0 means store default
}

// Matches reports whether a passes the filter's dismissal and severity rules.
// Limit is applied by the caller.
func (f AlertFilter) Matches(a Alert) bool {
	if a.Dismissed && !f.IncludeDismissed {
		return false
	}
	if f.MinSeverity != "" && !a.Severity.AtLeast(f.MinSeverity) {
		return false
	}
	return true
}

// DefaultAlertLimit caps alert listings when the filter leaves Limit unset.
const DefaultAlertLimit = 100

// EffectiveLimit returns the limit to apply for this filter.
func (f AlertFilter) EffectiveLimit() int {
	if f.Limit <= 0 || f.Limit > DefaultAlertLimit {
		return DefaultAlertLimit
	}
	return f.Limit
}
