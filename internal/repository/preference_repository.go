package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hyukudan/enroltimer/internal/models"
)

// PreferenceRepository persists per-user key/value preferences, notably the
// completion markers.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the preference row, or nil when the user has no value for the
// key yet.
func (r *PreferenceRepository) Get(ctx context.Context, userID int64, name string) (*models.UserPreference, error) {
	const query = `SELECT user_id, name, value FROM user_preferences WHERE user_id = $1 AND name = $2`
	var pref models.UserPreference
	if err := r.db.GetContext(ctx, &pref, query, userID, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get preference: %w", err)
	}
	return &pref, nil
}

// Set upserts a preference value.
func (r *PreferenceRepository) Set(ctx context.Context, userID int64, name, value string) error {
	const query = `INSERT INTO user_preferences (user_id, name, value)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, name) DO UPDATE SET value = EXCLUDED.value`
	if _, err := r.db.ExecContext(ctx, query, userID, name, value); err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

// ListByPrefix returns the user's preferences whose name starts with prefix.
func (r *PreferenceRepository) ListByPrefix(ctx context.Context, userID int64, prefix string) ([]models.UserPreference, error) {
	const query = `SELECT user_id, name, value FROM user_preferences
        WHERE user_id = $1 AND name LIKE $2 || '%' ORDER BY name ASC`
	var prefs []models.UserPreference
	if err := r.db.SelectContext(ctx, &prefs, query, userID, prefix); err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return prefs, nil
}

// DeleteByPrefix erases the user's preferences under the prefix and returns
// the number removed.
func (r *PreferenceRepository) DeleteByPrefix(ctx context.Context, userID int64, prefix string) (int64, error) {
	const query = `DELETE FROM user_preferences WHERE user_id = $1 AND name LIKE $2 || '%'`
	res, err := r.db.ExecContext(ctx, query, userID, prefix)
	if err != nil {
		return 0, fmt.Errorf("delete preferences: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted preferences: %w", err)
	}
	return deleted, nil
}
