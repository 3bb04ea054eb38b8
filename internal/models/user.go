package models

import "strings"

// User is a read-only view of the user directory.
type User struct {
	ID        int64  `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Deleted   bool   `db:"deleted" json:"deleted"`
	Suspended bool   `db:"suspended" json:"suspended"`
}

// FullName joins the name parts, tolerating blanks.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Active reports whether the user may still receive notifications.
func (u User) Active() bool {
	return !u.Deleted && !u.Suspended
}
