package models

// UserPreference is a per-user key/value row. The completion marker lives
// here: presence of key "completion_sent_<courseID>" means the completion
// email already went out and must never be repeated.
type UserPreference struct {
	UserID int64  `db:"user_id" json:"user_id"`
	Name   string `db:"name" json:"name"`
	Value  string `db:"value" json:"value"`
}

// CompletionMarkerPrefix namespaces completion markers in user_preferences.
const CompletionMarkerPrefix = "completion_sent_"
