package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"mindfuel/internal/types"
)

const alertColumns = `id, app_identifier, app_display_name, title, description, recommendations,
		time_spent_seconds, severity, profile, dismissed, created_at`

// AlertRepo provides data access for the wellness_alerts table. Alerts are
// immutable apart from the dismissed flag.
type AlertRepo struct {
	db DBTX
}

func NewAlertRepo(db DBTX) *AlertRepo {
	return &AlertRepo{db: db}
}

// Insert stores a new alert.
func (r *AlertRepo) Insert(ctx context.Context, a types.Alert) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO wellness_alerts (
			id, app_identifier, app_display_name, title, description, recommendations,
			time_spent_seconds, severity, severity_rank, profile, dismissed, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID,
		a.AppIdentifier,
		a.AppDisplayName,
		a.Title,
		a.Description,
		a.Recommendations,
		a.TimeSpentSeconds,
		string(a.Severity),
		a.Severity.Rank(),
		string(a.Profile),
		a.Dismissed,
		a.CreatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert alert", err)
	}
	return nil
}

// Get returns the alert with id.
func (r *AlertRepo) Get(ctx context.Context, id string) (*types.Alert, error) {
	row := r.db.QueryRow(ctx, `SELECT `+alertColumns+` FROM wellness_alerts WHERE id = $1`, id)
	return scanAlertRow(row, id)
}

// List returns alerts matching filter, newest first.
func (r *AlertRepo) List(ctx context.Context, filter types.AlertFilter) ([]types.Alert, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+alertColumns+`
		FROM wellness_alerts
		WHERE ($1 OR dismissed = false)
		  AND severity_rank >= $2
		ORDER BY created_at DESC, id ASC
		LIMIT $3`,
		filter.IncludeDismissed,
		filter.MinSeverity.Rank(),
		filter.EffectiveLimit(),
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query alerts", err)
	}
	defer rows.Close()

	var out []types.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan alert row", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating alert rows", err)
	}
	return out, nil
}

// Dismiss sets the dismissed flag and returns the updated alert.
func (r *AlertRepo) Dismiss(ctx context.Context, id string) (*types.Alert, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE wellness_alerts SET dismissed = true
		WHERE id = $1
		RETURNING `+alertColumns, id)
	return scanAlertRow(row, id)
}

func scanAlertRow(row pgx.Row, id string) (*types.Alert, error) {
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppErrorWithDetails(types.ErrCodeNotFoundAlert, "alert not found", nil,
				map[string]any{"alert_id": id})
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load alert", err)
	}
	return &a, nil
}

func scanAlert(row pgx.Row) (types.Alert, error) {
	var a types.Alert
	err := row.Scan(
		&a.ID,
		&a.AppIdentifier,
		&a.AppDisplayName,
		&a.Title,
		&a.Description,
		&a.Recommendations,
		&a.TimeSpentSeconds,
		&a.Severity,
		&a.Profile,
		&a.Dismissed,
		&a.CreatedAt,
	)
	a.CreatedAt = a.CreatedAt.UTC()
	return a, err
}
