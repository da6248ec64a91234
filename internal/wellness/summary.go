package wellness

import (
	"cmp"
	"slices"
	"time"

	"mindfuel/internal/types"
)

// mostUsedLimit is how many apps the daily summary lists.
const mostUsedLimit = 3

// Summarize builds the daily digest shown on the dashboard.
func (e *Evaluator) Summarize(date time.Time, obs []types.UsageObservation, alerts []types.Alert) types.DailySummary {
	score := e.ComputeDailyScore(obs)

	summary := types.DailySummary{
		Date:                   types.DayStart(date),
		Score:                  score.Score,
		TotalScreenTimeSeconds: score.TotalScreenTimeSeconds,
		TotalScreenTime:        types.FormatDuration(score.TotalScreenTimeSeconds),
		MostUsedApps:           []string{},
		AlertsTriggered:        len(alerts),
	}

	for _, o := range obs {
		t := sanitizeSeconds(o.TimeSpentSeconds)
		switch o.Category.Impact() {
		case types.ImpactPositive:
			summary.PositiveAppsSeconds += t
		case types.ImpactNegative:
			summary.NegativeAppsSeconds += t
		}
	}

	ranked := slices.Clone(obs)
	slices.SortFunc(ranked, func(a, b types.UsageObservation) int {
		return cmp.Or(
			cmp.Compare(sanitizeSeconds(b.TimeSpentSeconds), sanitizeSeconds(a.TimeSpentSeconds)),
			cmp.Compare(a.AppIdentifier, b.AppIdentifier),
		)
	})
	for _, o := range ranked[:min(mostUsedLimit, len(ranked))] {
		summary.MostUsedApps = append(summary.MostUsedApps, displayName(o))
	}
	return summary
}
