// Package usage supplies raw per-app usage tallies to the wellness engine and
// turns them into classified observations. Sources include a deterministic
// mock, a randomized "realistic" mock, and a remote HTTP usage service.
package usage

import (
	"context"
	"strings"
	"time"

	"mindfuel/internal/types"
)

// Source yields the raw usage tallies recorded for a calendar day.
type Source interface {
	DailyUsage(ctx context.Context, date time.Time) ([]types.RawUsage, error)
}

// Classifier assigns a category and wellness weight to an app.
type Classifier interface {
	Classify(appIdentifier, displayName string) (types.Category, float64)
}

// Ingestor converts raw tallies into classified observations.
type Ingestor struct {
	classifier Classifier
}

// NewIngestor returns an Ingestor backed by classifier.
func NewIngestor(classifier Classifier) *Ingestor {
	return &Ingestor{classifier: classifier}
}

// Ingest classifies each tally and stamps it with the start of date's UTC
// day. Per-tally dates are ignored so a batch always lands on a single day.
// Duplicates are kept so validation can report them.
func (i *Ingestor) Ingest(date time.Time, raw []types.RawUsage) []types.UsageObservation {
	day := types.DayStart(date)
	out := make([]types.UsageObservation, 0, len(raw))
	for _, r := range raw {
		id := strings.TrimSpace(r.AppIdentifier)
		name := strings.TrimSpace(r.DisplayName)
		category, weight := i.classifier.Classify(id, name)

		out = append(out, types.UsageObservation{
			AppIdentifier:    id,
			DisplayName:      name,
			Category:         category,
			WellnessWeight:   weight,
			TimeSpentSeconds: r.TimeSpentSeconds,
			SessionCount:     r.SessionCount,
			WindowDate:       day,
		})
	}
	return out
}
