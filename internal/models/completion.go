package models

// CourseCompletion is the read-only completion record for a (user, course)
// pair. Epoch seconds, zero meaning unset.
type CourseCompletion struct {
	UserID        int64 `db:"user_id" json:"user_id"`
	CourseID      int64 `db:"course_id" json:"course_id"`
	TimeCompleted int64 `db:"time_completed" json:"time_completed"`
	Reaggregate   int64 `db:"reaggregate" json:"reaggregate"`
}

// Completed reports whether any completion indicator is present.
func (c CourseCompletion) Completed() bool {
	return c.TimeCompleted > 0 || c.Reaggregate > 0
}

// GradeResult is the read-only aggregated grade for a (user, course) pair.
// Grade is nil while the course is not yet gradable.
type GradeResult struct {
	UserID   int64    `db:"user_id" json:"user_id"`
	CourseID int64    `db:"course_id" json:"course_id"`
	Grade    *float64 `db:"grade" json:"grade,omitempty"`
	GradeMax float64  `db:"grade_max" json:"grade_max"`
}

// Percentage converts the grade to a 0-100 scale, defaulting the maximum to
// 100 when unset. Returns false while no grade is recorded or it is negative.
func (g GradeResult) Percentage() (float64, bool) {
	if g.Grade == nil || *g.Grade < 0 {
		return 0, false
	}
	max := g.GradeMax
	if max <= 0 {
		max = 100
	}
	return *g.Grade / max * 100, true
}
