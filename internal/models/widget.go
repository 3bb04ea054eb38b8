package models

import "github.com/hyukudan/enroltimer/pkg/timeunit"

// WidgetUnit is one displayed countdown unit. Unit is the stable key the
// client binds to via data attributes; Label is the localized caption and is
// never parsed by the client.
type WidgetUnit struct {
	Unit  string `json:"unit"`
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// WidgetPayload is the render-path data contract for the countdown widget.
type WidgetPayload struct {
	CourseID         int64            `json:"course_id"`
	StartTime        int64            `json:"start_time"`
	EndTime          int64            `json:"end_time"`
	RemainingSeconds int64            `json:"remaining_seconds"`
	DaysRemaining    int              `json:"days_remaining"`
	Progress         float64          `json:"progress"`
	Urgency          timeunit.Urgency `json:"urgency"`
	ForceTwoDigits   bool             `json:"force_two_digits"`
	Units            []WidgetUnit     `json:"units"`
}

// PrivacyExport bundles everything this service stores about one user.
type PrivacyExport struct {
	UserID            int64            `json:"user_id"`
	Alerts            []AlertRecord    `json:"alerts"`
	CompletionMarkers []UserPreference `json:"completion_markers"`
}
