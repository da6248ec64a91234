// Package localstore keeps a device-local wellness history in SQLite. It
// implements the same store contract as the PostgreSQL store and backs the
// command-line tool.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"mindfuel/internal/evaluation"
	"mindfuel/internal/types"
)

var _ evaluation.Store = (*Store)(nil)

const ddl = `
CREATE TABLE IF NOT EXISTS usage_observations (
  app_identifier TEXT NOT NULL,
  window_date TEXT NOT NULL,
  display_name TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL,
  wellness_weight REAL NOT NULL,
  time_spent_seconds REAL NOT NULL,
  session_count INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (app_identifier, window_date)
);
CREATE TABLE IF NOT EXISTS daily_scores (
  date TEXT PRIMARY KEY,
  score REAL NOT NULL,
  total_screen_time_seconds REAL NOT NULL,
  contributing_observations INTEGER NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS wellness_alerts (
  id TEXT PRIMARY KEY,
  app_identifier TEXT NOT NULL,
  app_display_name TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  recommendations TEXT NOT NULL DEFAULT '[]',
  time_spent_seconds REAL NOT NULL,
  severity TEXT NOT NULL,
  severity_rank INTEGER NOT NULL,
  profile TEXT NOT NULL,
  dismissed INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS wellness_alerts_created_at_idx ON wellness_alerts (created_at);
`

// timestampLayout is RFC 3339 with fixed-width nanoseconds so stored
// timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const alertColumns = `id, app_identifier, app_display_name, title, description, recommendations,
  time_spent_seconds, severity, profile, dismissed, created_at`

// Store is a SQLite-backed evaluation.Store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path, creating parent directories
// and the schema as needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("localstore: create db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("localstore: open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("localstore: create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func dbErr(msg string, err error) error {
	return types.NewAppError(types.ErrCodeInternalDB, msg, err)
}

func day(t time.Time) string {
	return types.DayStart(t).Format(types.DateLayout)
}

// SaveObservations atomically replaces the observations stored for date.
func (s *Store) SaveObservations(ctx context.Context, date time.Time, obs []types.UsageObservation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbErr("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM usage_observations WHERE window_date = ?`, day(date)); err != nil {
		return dbErr("failed to delete observations", err)
	}
	for _, o := range obs {
		_, err := tx.ExecContext(ctx, `
INSERT INTO usage_observations (app_identifier, window_date, display_name, category, wellness_weight, time_spent_seconds, session_count)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.AppIdentifier, day(o.WindowDate), o.DisplayName, string(o.Category),
			o.WellnessWeight, o.TimeSpentSeconds, o.SessionCount)
		if err != nil {
			return dbErr("failed to insert observation", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return dbErr("failed to commit observations", err)
	}
	return nil
}

// Observations returns the observations stored for date, most used first.
func (s *Store) Observations(ctx context.Context, date time.Time) ([]types.UsageObservation, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT app_identifier, window_date, display_name, category, wellness_weight, time_spent_seconds, session_count
FROM usage_observations
WHERE window_date = ?
ORDER BY time_spent_seconds DESC, app_identifier ASC`, day(date))
	if err != nil {
		return nil, dbErr("failed to query observations", err)
	}
	defer rows.Close()

	var out []types.UsageObservation
	for rows.Next() {
		var o types.UsageObservation
		var window string
		if err := rows.Scan(&o.AppIdentifier, &window, &o.DisplayName, &o.Category,
			&o.WellnessWeight, &o.TimeSpentSeconds, &o.SessionCount); err != nil {
			return nil, dbErr("failed to scan observation row", err)
		}
		if o.WindowDate, err = types.ParseDate(window); err != nil {
			return nil, dbErr("stored observation has a malformed date", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("error iterating observation rows", err)
	}
	return out, nil
}

// SaveScore upserts the score for its date.
func (s *Store) SaveScore(ctx context.Context, score types.DailyWellnessScore) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO daily_scores (date, score, total_screen_time_seconds, contributing_observations, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(date) DO UPDATE SET
  score=excluded.score,
  total_screen_time_seconds=excluded.total_screen_time_seconds,
  contributing_observations=excluded.contributing_observations,
  updated_at=excluded.updated_at`,
		day(score.Date), score.Score, score.TotalScreenTimeSeconds, score.ContributingObservations,
		s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return dbErr("failed to upsert daily score", err)
	}
	return nil
}

// ListScores returns scores with from <= date < to, oldest first.
func (s *Store) ListScores(ctx context.Context, from, to time.Time) ([]types.DailyWellnessScore, error) {
	// Dates are stored as YYYY-MM-DD, so text comparison orders them.
	rows, err := s.db.QueryContext(ctx, `
SELECT date, score, total_screen_time_seconds, contributing_observations
FROM daily_scores
WHERE date >= ? AND date < ?
ORDER BY date ASC`, day(from), day(to))
	if err != nil {
		return nil, dbErr("failed to query daily scores", err)
	}
	defer rows.Close()

	var out []types.DailyWellnessScore
	for rows.Next() {
		var sc types.DailyWellnessScore
		var date string
		if err := rows.Scan(&date, &sc.Score, &sc.TotalScreenTimeSeconds, &sc.ContributingObservations); err != nil {
			return nil, dbErr("failed to scan daily score row", err)
		}
		if sc.Date, err = types.ParseDate(date); err != nil {
			return nil, dbErr("stored score has a malformed date", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("error iterating daily score rows", err)
	}
	return out, nil
}

// SaveAlerts inserts alerts in one transaction.
func (s *Store) SaveAlerts(ctx context.Context, alerts []types.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbErr("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range alerts {
		_, err := tx.ExecContext(ctx, `
INSERT INTO wellness_alerts (id, app_identifier, app_display_name, title, description, recommendations,
  time_spent_seconds, severity, severity_rank, profile, dismissed, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.AppIdentifier, a.AppDisplayName, a.Title, a.Description, a.Recommendations,
			a.TimeSpentSeconds, string(a.Severity), a.Severity.Rank(), string(a.Profile), a.Dismissed,
			a.CreatedAt.UTC().Format(timestampLayout))
		if err != nil {
			return dbErr("failed to insert alert", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return dbErr("failed to commit alerts", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(row scanner) (types.Alert, error) {
	var a types.Alert
	var created string
	if err := row.Scan(&a.ID, &a.AppIdentifier, &a.AppDisplayName, &a.Title, &a.Description,
		&a.Recommendations, &a.TimeSpentSeconds, &a.Severity, &a.Profile, &a.Dismissed, &created); err != nil {
		return a, err
	}
	t, err := time.Parse(timestampLayout, created)
	if err != nil {
		return a, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	a.CreatedAt = t.UTC()
	return a, nil
}

func (s *Store) GetAlert(ctx context.Context, id string) (*types.Alert, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM wellness_alerts WHERE id = ?`, id)
	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeNotFoundAlert, "alert not found", nil,
			map[string]any{"alert_id": id})
	}
	if err != nil {
		return nil, dbErr("failed to load alert", err)
	}
	return &a, nil
}

// ListAlerts returns alerts matching filter, newest first.
func (s *Store) ListAlerts(ctx context.Context, filter types.AlertFilter) ([]types.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+alertColumns+`
FROM wellness_alerts
WHERE (? OR dismissed = 0) AND severity_rank >= ?
ORDER BY created_at DESC, id ASC
LIMIT ?`, filter.IncludeDismissed, filter.MinSeverity.Rank(), filter.EffectiveLimit())
	if err != nil {
		return nil, dbErr("failed to query alerts", err)
	}
	defer rows.Close()

	var out []types.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, dbErr("failed to scan alert row", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("error iterating alert rows", err)
	}
	return out, nil
}

// DismissAlert marks the alert dismissed and returns it.
func (s *Store) DismissAlert(ctx context.Context, id string) (*types.Alert, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE wellness_alerts SET dismissed = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, dbErr("failed to dismiss alert", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeNotFoundAlert, "alert not found", nil,
			map[string]any{"alert_id": id})
	}
	return s.GetAlert(ctx, id)
}
