package model

import (
	"encoding/json"
	"time"
)

// AuditAction is the category of an audited administrative action.
type AuditAction string

const (
	AuditActionLogin  AuditAction = "LOGIN"
	AuditActionCreate AuditAction = "CREATE"
	AuditActionDelete AuditAction = "DELETE"
	AuditActionSMS    AuditAction = "SMS"
	AuditActionEmail  AuditAction = "EMAIL"
	AuditActionAIScan AuditAction = "AI_SCAN"
)

// AuditTimestampLayout is the second-granularity layout used when rendering entries.
const AuditTimestampLayout = "2006-01-02 15:04:05"

// AuditLogEntry is one append-only record of an administrative action.
// Entries are never updated.
type AuditLogEntry struct {
	ID        uint        `json:"-" gorm:"primaryKey"`
	Timestamp time.Time   `json:"timestamp" gorm:"not null;index"`
	Action    AuditAction `json:"action" gorm:"type:varchar(20);not null;index"`
	Details   string      `json:"details" gorm:"type:text"`
}

// TableName pins the table name.
func (AuditLogEntry) TableName() string {
	return "audit_logs"
}

// MarshalJSON renders the timestamp as local "YYYY-MM-DD HH:MM:SS".
func (e AuditLogEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Timestamp string      `json:"timestamp"`
		Action    AuditAction `json:"action"`
		Details   string      `json:"details"`
	}{
		Timestamp: e.Timestamp.Local().Format(AuditTimestampLayout),
		Action:    e.Action,
		Details:   e.Details,
	})
}
