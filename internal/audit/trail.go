package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/newstrnt/admin-authz/internal/logger"
)

const (
	// DefaultRetentionDays is used when a trail is built without WithRetention.
	DefaultRetentionDays = 90

	// RecentCriticalLimit caps Stats.RecentCritical.
	RecentCriticalLimit = 10

	// TopActorsLimit caps Stats.ByActor.
	TopActorsLimit = 10

	dayLayout = "2006-01-02"
)

// Trail records and reads the audit log.
type Trail struct {
	store     Store
	validate  *validator.Validate
	now       func() time.Time
	retention time.Duration
}

// Option configures a Trail.
type Option func(*Trail)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Trail) {
		t.now = now
	}
}

// WithRetention sets the retention window used by Prune. Days <= 0 keep the
// default.
func WithRetention(days int) Option {
	return func(t *Trail) {
		if days > 0 {
			t.retention = time.Duration(days) * 24 * time.Hour
		}
	}
}

// NewTrail returns a trail writing to store.
func NewTrail(store Store, opts ...Option) (*Trail, error) {
	if store == nil {
		return nil, ErrStoreNil
	}

	t := &Trail{
		store:     store,
		validate:  validator.New(),
		now:       time.Now,
		retention: DefaultRetentionDays * 24 * time.Hour,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Record stamps and appends one entry. It never fails the caller: invalid
// events and storage errors are reported on the audit log channel and
// counted, and ok is false.
func (t *Trail) Record(ctx context.Context, ev Event) (Entry, bool) {
	e := Entry{
		ID:           uuid.NewString(),
		Timestamp:    t.now().UTC(),
		Action:       ev.Action,
		ActorUserID:  ev.ActorUserID,
		ActorEmail:   ev.ActorEmail,
		ActorRole:    ev.ActorRole,
		ResourceType: ev.ResourceType,
		ResourceID:   ev.ResourceID,
		Details:      encodeDetails(ev.Details),
		IPAddress:    ev.IPAddress,
		UserAgent:    ev.UserAgent,
		Severity:     ev.Action.Severity(),
		Success:      !ev.Failed && ev.ErrorMessage == "",
		ErrorMessage: ev.ErrorMessage,
		OldValues:    encodeDetails(ev.OldValues),
		NewValues:    encodeDetails(ev.NewValues),
	}

	if err := t.check(ev); err != nil {
		recordFailuresTotal.WithLabelValues("invalid").Inc()
		logger.Audit().Warn().Err(err).Str("action", string(ev.Action)).Msg("audit event rejected")

		return e, false
	}

	if err := t.store.Append(ctx, e); err != nil {
		recordFailuresTotal.WithLabelValues("store").Inc()
		logger.Audit().Warn().Err(err).
			Str("entry_id", e.ID).
			Str("action", string(e.Action)).
			Str("actor", e.ActorUserID).
			Msg("audit entry not stored")

		return e, false
	}

	recordsTotal.WithLabelValues(string(e.Action), e.Severity.String()).Inc()

	return e, true
}

func (t *Trail) check(ev Event) error {
	if err := t.validate.Struct(ev); err != nil {
		return err //nolint:wrapcheck
	}

	if !ev.Action.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, ev.Action)
	}

	return nil
}

func encodeDetails(d any) string {
	switch v := d.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case json.RawMessage:
		return string(v)
	}

	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprintf("%v", d)
	}

	return string(b)
}

// Query returns matching entries, newest first.
func (t *Trail) Query(ctx context.Context, f Filter) ([]Entry, error) {
	entries, err := t.store.Query(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}

	return entries, nil
}

// ActorCount is the number of entries attributed to one actor.
type ActorCount struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Count  int    `json:"count"`
}

// DayCount is the number of entries on one UTC day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats summarizes the entries of a window. SuccessRate is a percentage and
// is 100 for an empty window.
type Stats struct {
	WindowDays     int              `json:"windowDays"`
	From           time.Time        `json:"from"`
	To             time.Time        `json:"to"`
	Total          int              `json:"total"`
	SuccessRate    float64          `json:"successRate"`
	BySeverity     map[Severity]int `json:"bySeverity"`
	ByAction       map[Action]int   `json:"byAction"`
	ByActor        []ActorCount     `json:"byActor"`
	Daily          []DayCount       `json:"daily"`
	RecentCritical []Entry          `json:"recentCritical"`
}

// Stats summarizes the last windowDays days. windowDays <= 0 covers all
// stored entries.
func (t *Trail) Stats(ctx context.Context, windowDays int) (*Stats, error) {
	now := t.now().UTC()

	f := Filter{To: now}
	if windowDays > 0 {
		f.From = now.Add(-time.Duration(windowDays) * 24 * time.Hour)
	}

	entries, err := t.Query(ctx, f)
	if err != nil {
		return nil, err
	}

	s := &Stats{
		WindowDays: windowDays,
		From:       f.From,
		To:         now,
		Total:      len(entries),
		BySeverity: map[Severity]int{SeverityInfo: 0, SeverityWarning: 0, SeverityCritical: 0},
		ByAction:   make(map[Action]int),
	}

	actors := make(map[string]*ActorCount)
	days := make(map[string]int)
	succeeded := 0

	// entries are newest first
	for _, e := range entries {
		s.BySeverity[e.Severity]++
		s.ByAction[e.Action]++
		if e.Success {
			succeeded++
		}
		days[e.Timestamp.UTC().Format(dayLayout)]++

		if e.ActorUserID != "" {
			a, ok := actors[e.ActorUserID]
			if !ok {
				a = &ActorCount{UserID: e.ActorUserID, Email: e.ActorEmail}
				actors[e.ActorUserID] = a
			}

			if a.Email == "" {
				a.Email = e.ActorEmail
			}

			a.Count++
		}

		if e.Severity == SeverityCritical && len(s.RecentCritical) < RecentCriticalLimit {
			s.RecentCritical = append(s.RecentCritical, e)
		}
	}

	s.SuccessRate = 100
	if s.Total > 0 {
		s.SuccessRate = float64(succeeded) / float64(s.Total) * 100
	}

	for _, a := range actors {
		s.ByActor = append(s.ByActor, *a)
	}

	sort.Slice(s.ByActor, func(i, j int) bool {
		if s.ByActor[i].Count != s.ByActor[j].Count {
			return s.ByActor[i].Count > s.ByActor[j].Count
		}

		return s.ByActor[i].UserID < s.ByActor[j].UserID
	})

	if len(s.ByActor) > TopActorsLimit {
		s.ByActor = s.ByActor[:TopActorsLimit]
	}

	for d, n := range days {
		s.Daily = append(s.Daily, DayCount{Date: d, Count: n})
	}

	sort.Slice(s.Daily, func(i, j int) bool {
		return s.Daily[i].Date < s.Daily[j].Date
	})

	return s, nil
}

// Prune removes entries older than the retention window and returns the
// number removed.
func (t *Trail) Prune(ctx context.Context) (int, error) {
	cutoff := t.now().UTC().Add(-t.retention)

	n, err := t.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit trail: %w", err)
	}

	prunedTotal.Add(float64(n))

	return n, nil
}
