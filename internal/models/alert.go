package models

// AlertRecord tracks a scheduled expiry warning for one enrolment. The table
// carries a UNIQUE index on enrol_id, so each enrolment gets at most one row;
// AlertTime is fixed at creation and Sent only ever flips false to true.
type AlertRecord struct {
	ID        string `db:"id" json:"id"`
	EnrolID   int64  `db:"enrol_id" json:"enrol_id"`
	AlertTime int64  `db:"alert_time" json:"alert_time"`
	Sent      bool   `db:"sent" json:"sent"`
}
