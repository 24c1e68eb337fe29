package daemon

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newstrnt/admin-authz/internal/config"
	"github.com/newstrnt/admin-authz/internal/db/controller/user"
	"github.com/newstrnt/admin-authz/internal/logger"
	"github.com/newstrnt/admin-authz/internal/rbac"
	"github.com/newstrnt/admin-authz/internal/token"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Title: "test",
		DB: config.DB{
			GormEngine: config.EngineSQLite,
			Name:       filepath.Join(t.TempDir(), "authz.db"),
		},
		Log: logger.Log{
			LogLevel:    "error",
			AppName:     "admin-authz",
			ServiceName: "admin-authz-test",
		},
		Webserver: config.Webserver{Port: 8080, APIPrefix: "/api/admin"},
		Audit:     config.Audit{Store: config.AuditStoreSQL, RetentionDays: 30},
		Session:   config.Session{Storage: config.SessionStorageDB, Table: "client_sessions"},
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)

	d, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, d.webService)
	t.Cleanup(d.close)

	u, err := user.Get(context.Background(), d.db, token.SuperAdminID)
	require.NoError(t, err)
	assert.Equal(t, string(rbac.RoleSuperAdmin), u.Role)
	assert.True(t, u.IsAdmin)

	require.NoError(t, seed(cfg, d.db), "seeding twice is a no-op")

	n, err := d.trail.Prune(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewRejectsBadLogLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.LogLevel = "loud"

	_, err := New(cfg)
	require.Error(t, err)
}

func TestOpenDBUnknownEngine(t *testing.T) {
	_, err := openDB(config.DB{GormEngine: "oracle"})
	require.ErrorIs(t, err, config.ErrUnknownGormEngine)
}

func TestSessionStorageFallsBackToMemory(t *testing.T) {
	cfg := testConfig(t)

	st, err := sessionStorage(cfg)
	require.NoError(t, err)
	require.NotNil(t, st)

	require.NoError(t, st.Set("k", []byte("v"), 0))

	got, err := st.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	require.NoError(t, st.Close())
}
