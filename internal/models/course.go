package models

// Course is a read-only view of the course directory.
type Course struct {
	ID        int64  `db:"id" json:"id"`
	FullName  string `db:"full_name" json:"full_name"`
	ShortName string `db:"short_name" json:"short_name"`
	Visible   bool   `db:"visible" json:"visible"`
}
