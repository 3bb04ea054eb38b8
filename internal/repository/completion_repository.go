package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hyukudan/enroltimer/internal/models"
)

// CompletionRepository reads completion records and aggregated course grades.
type CompletionRepository struct {
	db *sqlx.DB
}

// NewCompletionRepository constructs the repository.
func NewCompletionRepository(db *sqlx.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// FindCompletion returns the completion record, or nil when none exists yet.
func (r *CompletionRepository) FindCompletion(ctx context.Context, userID, courseID int64) (*models.CourseCompletion, error) {
	const query = `SELECT user_id, course_id, time_completed, reaggregate
        FROM course_completions WHERE user_id = $1 AND course_id = $2`
	var completion models.CourseCompletion
	if err := r.db.GetContext(ctx, &completion, query, userID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find completion: %w", err)
	}
	return &completion, nil
}

// FindGrade returns the aggregated course grade, or nil when none exists yet.
func (r *CompletionRepository) FindGrade(ctx context.Context, userID, courseID int64) (*models.GradeResult, error) {
	const query = `SELECT user_id, course_id, grade, grade_max
        FROM course_grades WHERE user_id = $1 AND course_id = $2`
	var grade models.GradeResult
	if err := r.db.GetContext(ctx, &grade, query, userID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find grade: %w", err)
	}
	return &grade, nil
}
