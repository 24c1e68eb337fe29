package audit

import (
	"strings"
	"time"
)

// Entry is a recorded audit event. Entries are never modified.
type Entry struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Action       Action    `json:"action"`
	ActorUserID  string    `json:"actorUserId"`
	ActorEmail   string    `json:"actorEmail"`
	ActorRole    string    `json:"actorRole"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId,omitempty"`
	// Details is a serialized JSON document.
	Details   string   `json:"details"`
	IPAddress string   `json:"ipAddress"`
	UserAgent string   `json:"userAgent"`
	Severity  Severity `json:"severity"`
	Success   bool     `json:"success"`
	// ErrorMessage explains a failed action.
	ErrorMessage string `json:"errorMessage,omitempty"`
	// OldValues and NewValues are serialized JSON documents describing a
	// change.
	OldValues string `json:"oldValues,omitempty"`
	NewValues string `json:"newValues,omitempty"`
}

// Resource renders the resource as type:id, or just the type without an id.
func (e Entry) Resource() string {
	if e.ResourceID == "" {
		return e.ResourceType
	}

	return e.ResourceType + ":" + e.ResourceID
}

// splitResource cuts at the first colon. Resource types never contain one,
// so ids may.
func splitResource(s string) (string, string) {
	typ, id, _ := strings.Cut(s, ":")

	return typ, id
}

// Event is the caller's description of something to audit. Severity, id and
// timestamp are assigned on record.
type Event struct {
	Action       Action `validate:"required"`
	ActorUserID  string `validate:"max=64"`
	ActorEmail   string `validate:"max=255"`
	ActorRole    string `validate:"max=32"`
	ResourceType string `validate:"max=64,excludes=:"`
	ResourceID   string `validate:"max=128"`
	// Details is stored as-is when it is a string or []byte and as JSON
	// otherwise.
	Details   any
	IPAddress string `validate:"max=64"`
	UserAgent string
	// Failed marks an action that was attempted and did not succeed. A
	// non-empty ErrorMessage implies it.
	Failed       bool
	ErrorMessage string `validate:"max=1024"`
	// OldValues and NewValues are encoded like Details.
	OldValues any
	NewValues any
}

// Filter selects entries. Zero fields match everything; set fields are ANDed.
type Filter struct {
	// From and To bound the timestamp, both inclusive.
	From time.Time
	To   time.Time
	// Severity requires an exact severity.
	Severity Severity
	// MinSeverity requires at least this severity.
	MinSeverity Severity
	Action      Action
	ActorUserID string
	ActorRole   string
	// ResourceType requires an exact resource type.
	ResourceType string
	// Success selects successful (true) or failed (false) entries when set.
	Success *bool
	// Search is a case-insensitive substring over actor email, resource
	// type, resource id and details.
	Search string
	// Limit caps the result size when positive.
	Limit int
}

// Match reports whether e satisfies every set condition of f. Limit is ignored.
func (f Filter) Match(e Entry) bool {
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	if f.Severity != 0 && e.Severity != f.Severity {
		return false
	}
	if f.MinSeverity != 0 && e.Severity < f.MinSeverity {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.ActorUserID != "" && e.ActorUserID != f.ActorUserID {
		return false
	}
	if f.ActorRole != "" && e.ActorRole != f.ActorRole {
		return false
	}
	if f.ResourceType != "" && e.ResourceType != f.ResourceType {
		return false
	}
	if f.Success != nil && e.Success != *f.Success {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		for _, field := range []string{e.ActorEmail, e.ResourceType, e.ResourceID, e.Details} {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}

		return false
	}

	return true
}
