package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hyukudan/enroltimer/internal/models"
)

// CourseRepository reads the course directory and the timer-instance table
// that marks which courses carry the countdown feature.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course, or nil when it no longer exists.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT id, full_name, short_name, visible FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// ListTimerCourses returns the visible courses with an enabled timer instance.
func (r *CourseRepository) ListTimerCourses(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT c.id, c.full_name, c.short_name, c.visible
        FROM courses c
        JOIN timer_instances ti ON ti.course_id = c.id
        WHERE c.visible = TRUE AND ti.enabled = TRUE
        ORDER BY c.id ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list timer courses: %w", err)
	}
	return courses, nil
}

// ListEnrolledUsers returns the distinct non-deleted, non-suspended users
// enrolled in the course through any method.
func (r *CourseRepository) ListEnrolledUsers(ctx context.Context, courseID int64) ([]models.User, error) {
	const query = `SELECT DISTINCT u.id, u.first_name, u.last_name, u.email, u.deleted, u.suspended
        FROM users u
        JOIN user_enrolments ue ON ue.user_id = u.id
        JOIN enrol_methods em ON em.id = ue.enrol_method_id
        WHERE em.course_id = $1 AND u.deleted = FALSE AND u.suspended = FALSE
        ORDER BY u.id ASC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, courseID); err != nil {
		return nil, fmt.Errorf("list enrolled users: %w", err)
	}
	return users, nil
}
