package models

import "time"

// AuditLog is a persisted audit trail entry. Rows are inserted once and only
// removed by the retention prune.
type AuditLog struct {
	// ID is a UUID assigned when the entry is recorded.
	ID string `gorm:"primaryKey;size:36"`
	// Timestamp is the record time in UTC.
	Timestamp time.Time `gorm:"not null;index"`
	// Action is the audit action tag, e.g. ROLE_CHANGE.
	Action       string `gorm:"size:64;not null;index"`
	ActorUserID  string `gorm:"column:actor_user_id;size:64;index"`
	ActorEmail   string `gorm:"column:actor_email;size:255"`
	ActorRole    string `gorm:"column:actor_role;size:32;index"`
	ResourceType string `gorm:"column:resource_type;size:64;index"`
	ResourceID   string `gorm:"column:resource_id;size:128"`
	// Details is a JSON document describing the action.
	Details   string `gorm:"type:text"`
	IPAddress string `gorm:"column:ip_address;size:64"`
	UserAgent string `gorm:"column:user_agent;size:512"`
	// Severity is 1 (info), 2 (warning) or 3 (critical).
	Severity uint8 `gorm:"not null;index"`
	// Success has no column default so that a false value is written as-is.
	Success      bool   `gorm:"index"`
	ErrorMessage string `gorm:"column:error_message;size:1024"`
	OldValues    string `gorm:"column:old_values;type:text"`
	NewValues    string `gorm:"column:new_values;type:text"`
}

// TableName returns the table name for the AuditLog model.
func (AuditLog) TableName() string {
	return "audit_logs"
}

// All returns every model managed by the service, for AutoMigrate.
func All() []any {
	return []any{&User{}, &AuditLog{}}
}
