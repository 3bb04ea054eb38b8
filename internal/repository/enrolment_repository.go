package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hyukudan/enroltimer/internal/models"
)

// EnrolmentRepository reads the enrolment subsystem's tables. This service
// never writes them.
type EnrolmentRepository struct {
	db *sqlx.DB
}

// NewEnrolmentRepository constructs the repository.
func NewEnrolmentRepository(db *sqlx.DB) *EnrolmentRepository {
	return &EnrolmentRepository{db: db}
}

// ListByUserAndCourse returns every enrolment record joining the user to the
// course across all enrolment methods, soonest time_end first. Zero time_end
// values sort to the front; callers must not read them as "soonest".
func (r *EnrolmentRepository) ListByUserAndCourse(ctx context.Context, userID, courseID int64) ([]models.EnrolmentRecord, error) {
	const query = `SELECT ue.id, ue.user_id, ue.enrol_method_id, ue.time_start, ue.time_end
        FROM user_enrolments ue
        JOIN enrol_methods em ON em.id = ue.enrol_method_id
        WHERE ue.user_id = $1 AND em.course_id = $2
        ORDER BY ue.time_end ASC`
	var records []models.EnrolmentRecord
	if err := r.db.SelectContext(ctx, &records, query, userID, courseID); err != nil {
		return nil, fmt.Errorf("list enrolments: %w", err)
	}
	return records, nil
}

// FindByID returns a single enrolment record, or nil when it no longer exists.
func (r *EnrolmentRepository) FindByID(ctx context.Context, id int64) (*models.EnrolmentRecord, error) {
	const query = `SELECT id, user_id, enrol_method_id, time_start, time_end FROM user_enrolments WHERE id = $1`
	var record models.EnrolmentRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find enrolment: %w", err)
	}
	return &record, nil
}

// FindMethod returns the enrolment method row, or nil when missing.
func (r *EnrolmentRepository) FindMethod(ctx context.Context, id int64) (*models.EnrolMethod, error) {
	const query = `SELECT id, course_id, enrol_end_date FROM enrol_methods WHERE id = $1`
	var method models.EnrolMethod
	if err := r.db.GetContext(ctx, &method, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find enrol method: %w", err)
	}
	return &method, nil
}
