package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionRegister        = "REGISTER"
	AuditActionSessionCreate   = "SESSION_CREATE"
	AuditActionSessionUpdate   = "SESSION_UPDATE"
	AuditActionSessionTransfer = "SESSION_TRANSFER"
	AuditActionSessionDelete   = "SESSION_DELETE"
	AuditActionProfileUpdate   = "PROFILE_UPDATE"
	AuditActionProfileDelete   = "PROFILE_DELETE"
	AuditActionTopicChange     = "TOPIC_CHANGE"
	AuditActionReportExport    = "REPORT_EXPORT"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	AccountID  *string   `db:"account_id" json:"account_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
