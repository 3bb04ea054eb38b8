package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hyukudan/enroltimer/internal/models"
	appErrors "github.com/hyukudan/enroltimer/pkg/errors"
)

const uniqueViolationCode = "23505"

// AlertRepository persists the expiry-alert rows this service owns.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository constructs the repository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// IsUniqueViolation reports whether the error is the enrol_id uniqueness
// constraint rejecting a duplicate insert. Concurrent scheduling races resolve
// through this constraint, not through prior existence checks.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}

// Create inserts a new alert row. A unique violation on enrol_id comes back
// as a typed conflict wrapping the driver error so callers can treat it as
// already-scheduled.
func (r *AlertRepository) Create(ctx context.Context, alert *models.AlertRecord) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	const query = `INSERT INTO enrolment_alerts (id, enrol_id, alert_time, sent)
        VALUES (:id, :enrol_id, :alert_time, :sent)`
	if _, err := r.db.NamedExecContext(ctx, query, alert); err != nil {
		if IsUniqueViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "alert already scheduled")
		}
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// ListDue returns unsent alerts whose alert time has passed.
func (r *AlertRepository) ListDue(ctx context.Context, now int64) ([]models.AlertRecord, error) {
	const query = `SELECT id, enrol_id, alert_time, sent FROM enrolment_alerts
        WHERE sent = FALSE AND alert_time < $1 ORDER BY alert_time ASC`
	var alerts []models.AlertRecord
	if err := r.db.SelectContext(ctx, &alerts, query, now); err != nil {
		return nil, fmt.Errorf("list due alerts: %w", err)
	}
	return alerts, nil
}

// MarkSent advances an alert to its terminal state. There is no way back.
func (r *AlertRepository) MarkSent(ctx context.Context, id string) error {
	const query = `UPDATE enrolment_alerts SET sent = TRUE WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark alert sent: %w", err)
	}
	return nil
}

// DeleteOrphans removes alert rows whose enrolment no longer exists and
// returns how many were purged.
func (r *AlertRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	const query = `DELETE FROM enrolment_alerts a
        WHERE NOT EXISTS (SELECT 1 FROM user_enrolments ue WHERE ue.id = a.enrol_id)`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("purge orphan alerts: %w", err)
	}
	purged, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged alerts: %w", err)
	}
	return purged, nil
}

// ListByUser returns the alert rows belonging to the user's enrolments.
func (r *AlertRepository) ListByUser(ctx context.Context, userID int64) ([]models.AlertRecord, error) {
	const query = `SELECT a.id, a.enrol_id, a.alert_time, a.sent FROM enrolment_alerts a
        JOIN user_enrolments ue ON ue.id = a.enrol_id
        WHERE ue.user_id = $1 ORDER BY a.alert_time ASC`
	var alerts []models.AlertRecord
	if err := r.db.SelectContext(ctx, &alerts, query, userID); err != nil {
		return nil, fmt.Errorf("list alerts by user: %w", err)
	}
	return alerts, nil
}

// DeleteByUser erases the user's alert rows (privacy erasure) and returns the
// number removed.
func (r *AlertRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	const query = `DELETE FROM enrolment_alerts a
        USING user_enrolments ue
        WHERE ue.id = a.enrol_id AND ue.user_id = $1`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("delete alerts by user: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted alerts: %w", err)
	}
	return deleted, nil
}
