package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionAlertSent      = "ALERT_SENT"
	AuditActionCompletionSent = "COMPLETION_SENT"
	AuditActionPrivacyExport  = "PRIVACY_EXPORT"
	AuditActionPrivacyErase   = "PRIVACY_ERASE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    *int64    `db:"user_id" json:"user_id,omitempty"`
	Action    string    `db:"action" json:"action"`
	Resource  string    `db:"resource" json:"resource"`
	Payload   []byte    `db:"payload" json:"payload,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
