package db

import (
	"context"
	"time"

	"mindfuel/internal/types"
)

// ObservationRepo provides data access for the usage_observations table.
// The primary key (app_identifier, window_date) enforces one observation per
// app per day.
type ObservationRepo struct {
	db DBTX
}

func NewObservationRepo(db DBTX) *ObservationRepo {
	return &ObservationRepo{db: db}
}

// DeleteDay removes every observation for date.
func (r *ObservationRepo) DeleteDay(ctx context.Context, date time.Time) error {
	_, err := r.db.Exec(ctx, `DELETE FROM usage_observations WHERE window_date = $1`, types.DayStart(date))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete observations", err)
	}
	return nil
}

// Insert stores one observation. A second observation for the same app and
// day is a conflict reported as a database error.
func (r *ObservationRepo) Insert(ctx context.Context, o types.UsageObservation) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO usage_observations (
			app_identifier, window_date, display_name, category,
			wellness_weight, time_spent_seconds, session_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.AppIdentifier,
		types.DayStart(o.WindowDate),
		o.DisplayName,
		string(o.Category),
		o.WellnessWeight,
		o.TimeSpentSeconds,
		o.SessionCount,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert observation", err)
	}
	return nil
}

// ListDay returns the observations stored for date, ordered by time spent
// descending.
func (r *ObservationRepo) ListDay(ctx context.Context, date time.Time) ([]types.UsageObservation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT app_identifier, window_date, display_name, category,
		       wellness_weight, time_spent_seconds, session_count
		FROM usage_observations
		WHERE window_date = $1
		ORDER BY time_spent_seconds DESC, app_identifier ASC`, types.DayStart(date))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query observations", err)
	}
	defer rows.Close()

	var out []types.UsageObservation
	for rows.Next() {
		var o types.UsageObservation
		if err := rows.Scan(
			&o.AppIdentifier,
			&o.WindowDate,
			&o.DisplayName,
			&o.Category,
			&o.WellnessWeight,
			&o.TimeSpentSeconds,
			&o.SessionCount,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan observation row", err)
		}
		o.WindowDate = o.WindowDate.UTC()
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating observation rows", err)
	}
	return out, nil
}
