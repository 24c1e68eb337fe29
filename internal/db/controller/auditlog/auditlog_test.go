package auditlog

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/newstrnt/admin-authz/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.AuditLog{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// seedLogs inserts test data into the database.
func seedLogs(t *testing.T, db *gorm.DB) {
	t.Helper()

	rows := []models.AuditLog{
		{ID: "a", Timestamp: base, Action: "LOGIN_SUCCESS", ActorUserID: "u1", ActorEmail: "Alice@x.com", ActorRole: "EDITOR",
			Severity: 1, Success: true},
		{ID: "b", Timestamp: base.Add(time.Hour), Action: "ROLE_CHANGE", ActorUserID: "u1", ActorEmail: "alice@x.com", ActorRole: "EDITOR",
			ResourceType: "user", ResourceID: "u2", Details: `{"to":"EDITOR"}`, Severity: 2, Success: true,
			OldValues: `{"role":"VIEWER"}`, NewValues: `{"role":"EDITOR"}`},
		{ID: "c", Timestamp: base.Add(2 * time.Hour), Action: "UNAUTHORIZED_ACCESS", ActorUserID: "u3", ActorEmail: "bob@x.com",
			ResourceType: "route", ResourceID: "/api/admin/audit", Details: `{"permission":"system.logs"}`, Severity: 3,
			ErrorMessage: "missing permission"},
		{ID: "d", Timestamp: base.Add(3 * time.Hour), Action: "USER_UPDATE", ActorUserID: "u3", ActorEmail: "bob@x.com",
			Details: `{"note":"100%_done"}`, Severity: 1, Success: true},
	}

	for i := range rows {
		require.NoError(t, Append(context.Background(), db, &rows[i]), "failed to seed test data")
	}
}

func ids(rows []models.AuditLog) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}

	return out
}

func TestFind(t *testing.T) {
	db := setupTestDB(t)
	seedLogs(t, db)

	yes, no := true, false

	testCases := []struct {
		name     string
		query    Query
		expected []string
	}{
		{name: "all newest first", query: Query{}, expected: []string{"d", "c", "b", "a"}},
		{name: "inclusive range", query: Query{From: base.Add(time.Hour), To: base.Add(2 * time.Hour)}, expected: []string{"c", "b"}},
		{name: "severity", query: Query{Severity: 3}, expected: []string{"c"}},
		{name: "min severity", query: Query{MinSeverity: 2}, expected: []string{"c", "b"}},
		{name: "action", query: Query{Action: "ROLE_CHANGE"}, expected: []string{"b"}},
		{name: "actor", query: Query{ActorUserID: "u3"}, expected: []string{"d", "c"}},
		{name: "actor role", query: Query{ActorRole: "EDITOR"}, expected: []string{"b", "a"}},
		{name: "resource type", query: Query{ResourceType: "route"}, expected: []string{"c"}},
		{name: "succeeded", query: Query{Success: &yes}, expected: []string{"d", "b", "a"}},
		{name: "failed", query: Query{Success: &no}, expected: []string{"c"}},
		{name: "search email case-insensitive", query: Query{Search: "ALICE"}, expected: []string{"b", "a"}},
		{name: "search resource id", query: Query{Search: "/api/admin"}, expected: []string{"c"}},
		{name: "search details", query: Query{Search: "editor"}, expected: []string{"b"}},
		{name: "search escapes wildcards", query: Query{Search: "100%_"}, expected: []string{"d"}},
		{name: "underscore is literal", query: Query{Search: "_"}, expected: []string{"d"}},
		{name: "combined", query: Query{ActorUserID: "u1", Search: "editor", Severity: 2}, expected: []string{"b"}},
		{name: "limit", query: Query{Limit: 2}, expected: []string{"d", "c"}},
		{name: "no match", query: Query{Search: "nothing-like-this"}, expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := Find(context.Background(), db, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ids(rows))
		})
	}
}

func TestAppendKeepsOutcome(t *testing.T) {
	db := setupTestDB(t)
	seedLogs(t, db)

	no := false

	rows, err := Find(context.Background(), db, Query{Success: &no})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Success)
	assert.Equal(t, "missing permission", rows[0].ErrorMessage)

	rows, err = Find(context.Background(), db, Query{Action: "ROLE_CHANGE"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.JSONEq(t, `{"role":"VIEWER"}`, rows[0].OldValues)
	assert.JSONEq(t, `{"role":"EDITOR"}`, rows[0].NewValues)
}

func TestAppendValidation(t *testing.T) {
	db := setupTestDB(t)

	require.ErrorIs(t, Append(context.Background(), nil, &models.AuditLog{ID: "x"}), ErrDBNil)
	require.ErrorIs(t, Append(context.Background(), db, &models.AuditLog{}), ErrEntryIDEmpty)

	_, err := Find(context.Background(), nil, Query{})
	require.ErrorIs(t, err, ErrDBNil)
}

func TestDeleteBefore(t *testing.T) {
	db := setupTestDB(t)
	seedLogs(t, db)

	n, err := DeleteBefore(context.Background(), db, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err := Find(context.Background(), db, Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c"}, ids(rows))

	_, err = DeleteBefore(context.Background(), nil, base)
	require.ErrorIs(t, err, ErrDBNil)
}
