package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/newstrnt/admin-authz/internal/db/controller/auditlog"
	"github.com/newstrnt/admin-authz/internal/db/models"
)

// Store persists entries. Implementations must be safe for concurrent Append.
type Store interface {
	Append(ctx context.Context, e Entry) error
	// Query returns matching entries, newest first.
	Query(ctx context.Context, f Filter) ([]Entry, error)
	// DeleteBefore removes entries older than cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// DefaultMemoryCapacity bounds a MemoryStore built with capacity <= 0.
const DefaultMemoryCapacity = 10000

// MemoryStore keeps the most recent entries in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

// NewMemoryStore returns a store holding at most capacity entries; the
// oldest are dropped first.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}

	return &MemoryStore{capacity: capacity}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	if over := len(s.entries) - s.capacity; over > 0 {
		s.entries = append([]Entry(nil), s.entries[over:]...)
	}

	return nil
}

// Query implements Store.
func (s *MemoryStore) Query(_ context.Context, f Filter) ([]Entry, error) {
	s.mu.RLock()
	out := make([]Entry, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		if f.Match(s.entries[i]) {
			out = append(out, s.entries[i])
		}
	}
	s.mu.RUnlock()

	// insertion order is newest last; keep it among equal timestamps
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}

	return out, nil
}

// DeleteBefore implements Store.
func (s *MemoryStore) DeleteBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}

	removed := len(s.entries) - len(kept)
	s.entries = kept

	return removed, nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// SQLStore persists entries in the audit_logs table through gorm.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore returns a store backed by db. The table must be migrated.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Append implements Store.
func (s *SQLStore) Append(ctx context.Context, e Entry) error {
	return auditlog.Append(ctx, s.db, toModel(e))
}

// Query implements Store.
func (s *SQLStore) Query(ctx context.Context, f Filter) ([]Entry, error) {
	rows, err := auditlog.Find(ctx, s.db, auditlog.Query{
		From:         f.From,
		To:           f.To,
		Severity:     uint8(f.Severity),
		MinSeverity:  uint8(f.MinSeverity),
		Action:       string(f.Action),
		ActorUserID:  f.ActorUserID,
		ActorRole:    f.ActorRole,
		ResourceType: f.ResourceType,
		Success:      f.Success,
		Search:       f.Search,
		Limit:        f.Limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i]))
	}

	return out, nil
}

// DeleteBefore implements Store.
func (s *SQLStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := auditlog.DeleteBefore(ctx, s.db, cutoff)

	return int(n), err
}

func toModel(e Entry) *models.AuditLog {
	return &models.AuditLog{
		ID:           e.ID,
		Timestamp:    e.Timestamp.UTC(),
		Action:       string(e.Action),
		ActorUserID:  e.ActorUserID,
		ActorEmail:   e.ActorEmail,
		ActorRole:    e.ActorRole,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Details:      e.Details,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		Severity:     uint8(e.Severity),
		Success:      e.Success,
		ErrorMessage: e.ErrorMessage,
		OldValues:    e.OldValues,
		NewValues:    e.NewValues,
	}
}

func fromModel(m *models.AuditLog) Entry {
	return Entry{
		ID:           m.ID,
		Timestamp:    m.Timestamp.UTC(),
		Action:       Action(m.Action),
		ActorUserID:  m.ActorUserID,
		ActorEmail:   m.ActorEmail,
		ActorRole:    m.ActorRole,
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		Details:      m.Details,
		IPAddress:    m.IPAddress,
		UserAgent:    m.UserAgent,
		Severity:     Severity(m.Severity),
		Success:      m.Success,
		ErrorMessage: m.ErrorMessage,
		OldValues:    m.OldValues,
		NewValues:    m.NewValues,
	}
}
