// Package auditlog persists audit trail entries.
package auditlog

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/newstrnt/admin-authz/internal/db/models"
)

const likeEscape = "!"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrEntryIDEmpty is returned when appending an entry without an id.
	ErrEntryIDEmpty = errors.New("audit entry id cannot be empty")
)

// Query selects audit rows. Zero values disable a condition.
type Query struct {
	From         time.Time
	To           time.Time
	Severity     uint8
	MinSeverity  uint8
	Action       string
	ActorUserID  string
	ActorRole    string
	ResourceType string
	// Success selects on the success flag when non-nil.
	Success *bool
	// Search is a case-insensitive substring over actor email, resource
	// type, resource id and details.
	Search string
	Limit  int
}

// Append inserts one row.
func Append(ctx context.Context, db *gorm.DB, entry *models.AuditLog) error {
	if db == nil {
		return ErrDBNil
	}
	if entry.ID == "" {
		return ErrEntryIDEmpty
	}

	return db.WithContext(ctx).Create(entry).Error
}

// Find returns matching rows, newest first.
func Find(ctx context.Context, db *gorm.DB, q Query) ([]models.AuditLog, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	tx := db.WithContext(ctx).Model(&models.AuditLog{})

	if !q.From.IsZero() {
		tx = tx.Where("timestamp >= ?", q.From.UTC())
	}
	if !q.To.IsZero() {
		tx = tx.Where("timestamp <= ?", q.To.UTC())
	}
	if q.Severity != 0 {
		tx = tx.Where("severity = ?", q.Severity)
	}
	if q.MinSeverity != 0 {
		tx = tx.Where("severity >= ?", q.MinSeverity)
	}
	if q.Action != "" {
		tx = tx.Where("action = ?", q.Action)
	}
	if q.ActorUserID != "" {
		tx = tx.Where("actor_user_id = ?", q.ActorUserID)
	}
	if q.ActorRole != "" {
		tx = tx.Where("actor_role = ?", q.ActorRole)
	}
	if q.ResourceType != "" {
		tx = tx.Where("resource_type = ?", q.ResourceType)
	}
	if q.Success != nil {
		tx = tx.Where("success = ?", *q.Success)
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		tx = tx.Where(
			"(LOWER(actor_email) LIKE ? ESCAPE '!' OR LOWER(resource_type) LIKE ? ESCAPE '!' "+
				"OR LOWER(resource_id) LIKE ? ESCAPE '!' OR LOWER(details) LIKE ? ESCAPE '!')",
			pattern, pattern, pattern, pattern,
		)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []models.AuditLog
	if err := tx.Order("timestamp DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// DeleteBefore removes rows older than cutoff and returns the count.
func DeleteBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.WithContext(ctx).Where("timestamp < ?", cutoff.UTC()).Delete(&models.AuditLog{})

	return result.RowsAffected, result.Error
}

func escapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

	return r.Replace(s)
}
