package models

// EnrolmentRecord is a read-only view of one user's enrolment through a single
// enrolment method. The enrolment subsystem owns these rows; this service only
// reads them. A (user, course) pair may hold several records, one per method.
type EnrolmentRecord struct {
	ID            int64 `db:"id" json:"id"`
	UserID        int64 `db:"user_id" json:"user_id"`
	EnrolMethodID int64 `db:"enrol_method_id" json:"enrol_method_id"`
	TimeStart     int64 `db:"time_start" json:"time_start"`
	TimeEnd       int64 `db:"time_end" json:"time_end"`
}

// EnrolMethod is the read-only enrolment method row providing the fallback
// expiry when the record itself carries no override (TimeEnd == 0).
type EnrolMethod struct {
	ID           int64 `db:"id" json:"id"`
	CourseID     int64 `db:"course_id" json:"course_id"`
	EnrolEndDate int64 `db:"enrol_end_date" json:"enrol_end_date"`
}
