package db

import (
	"context"
	"errors"
	"time"

	"mindfuel/internal/evaluation"
	"mindfuel/internal/types"
)

var _ evaluation.Store = (*Store)(nil)

// Store implements evaluation.Store on PostgreSQL.
type Store struct {
	db           TxBeginner
	observations *ObservationRepo
	scores       *ScoreRepo
	alerts       *AlertRepo
}

// NewStore builds a Store over db.
func NewStore(db TxBeginner) *Store {
	return &Store{
		db:           db,
		observations: NewObservationRepo(db),
		scores:       NewScoreRepo(db),
		alerts:       NewAlertRepo(db),
	}
}

// SaveObservations atomically replaces the observations stored for date.
func (s *Store) SaveObservations(ctx context.Context, date time.Time, obs []types.UsageObservation) error {
	err := withTx(ctx, s.db, func(tx DBTX) error {
		repo := NewObservationRepo(tx)
		if err := repo.DeleteDay(ctx, date); err != nil {
			return err
		}
		for _, o := range obs {
			if err := repo.Insert(ctx, o); err != nil {
				return err
			}
		}
		return nil
	})
	return asDBError(err, "failed to save observations")
}

// Observations returns the observations stored for date.
func (s *Store) Observations(ctx context.Context, date time.Time) ([]types.UsageObservation, error) {
	return s.observations.ListDay(ctx, date)
}

func (s *Store) SaveScore(ctx context.Context, score types.DailyWellnessScore) error {
	return s.scores.Upsert(ctx, score)
}

// SaveAlerts inserts alerts in one transaction.
func (s *Store) SaveAlerts(ctx context.Context, alerts []types.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	err := withTx(ctx, s.db, func(tx DBTX) error {
		repo := NewAlertRepo(tx)
		for _, a := range alerts {
			if err := repo.Insert(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	return asDBError(err, "failed to save alerts")
}

func (s *Store) GetAlert(ctx context.Context, id string) (*types.Alert, error) {
	return s.alerts.Get(ctx, id)
}

func (s *Store) ListAlerts(ctx context.Context, filter types.AlertFilter) ([]types.Alert, error) {
	return s.alerts.List(ctx, filter)
}

func (s *Store) DismissAlert(ctx context.Context, id string) (*types.Alert, error) {
	return s.alerts.Dismiss(ctx, id)
}

func (s *Store) ListScores(ctx context.Context, from, to time.Time) ([]types.DailyWellnessScore, error) {
	return s.scores.ListRange(ctx, from, to)
}

// asDBError leaves AppErrors untouched and wraps anything else, such as a
// failed BEGIN or COMMIT.
func asDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return types.NewAppError(types.ErrCodeInternalDB, msg, err)
}
