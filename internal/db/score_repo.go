package db

import (
	"context"
	"time"

	"mindfuel/internal/types"
)

// ScoreRepo provides data access for the daily_scores table.
type ScoreRepo struct {
	db DBTX
}

func NewScoreRepo(db DBTX) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// Upsert stores the score for its date, replacing any earlier computation.
func (r *ScoreRepo) Upsert(ctx context.Context, s types.DailyWellnessScore) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO daily_scores (date, score, total_screen_time_seconds, contributing_observations, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (date) DO UPDATE SET
			score = EXCLUDED.score,
			total_screen_time_seconds = EXCLUDED.total_screen_time_seconds,
			contributing_observations = EXCLUDED.contributing_observations,
			updated_at = now()`,
		types.DayStart(s.Date),
		s.Score,
		s.TotalScreenTimeSeconds,
		s.ContributingObservations,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to upsert daily score", err)
	}
	return nil
}

// ListRange returns scores with from <= date < to, oldest first.
func (r *ScoreRepo) ListRange(ctx context.Context, from, to time.Time) ([]types.DailyWellnessScore, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date, score, total_screen_time_seconds, contributing_observations
		FROM daily_scores
		WHERE date >= $1 AND date < $2
		ORDER BY date ASC`, from, to)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query daily scores", err)
	}
	defer rows.Close()

	var out []types.DailyWellnessScore
	for rows.Next() {
		var s types.DailyWellnessScore
		if err := rows.Scan(&s.Date, &s.Score, &s.TotalScreenTimeSeconds, &s.ContributingObservations); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan daily score row", err)
		}
		s.Date = s.Date.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating daily score rows", err)
	}
	return out, nil
}
