// Package webtest builds api handler environments for tests.
package webtest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/newstrnt/admin-authz/internal/audit"
	"github.com/newstrnt/admin-authz/internal/auth"
	"github.com/newstrnt/admin-authz/internal/clientsession"
	"github.com/newstrnt/admin-authz/internal/config"
	"github.com/newstrnt/admin-authz/internal/db/controller/user"
	"github.com/newstrnt/admin-authz/internal/db/models"
	"github.com/newstrnt/admin-authz/internal/rbac"
	"github.com/newstrnt/admin-authz/internal/token"
	"github.com/newstrnt/admin-authz/internal/web/handler"
)

// Prefix is the api mount point of test environments.
const Prefix = "/api/admin"

// Secret signs structured test tokens.
var Secret = []byte("webtest-secret-0123456789abcdef!")

// Users seeded into every environment.
var Users = []models.User{
	{ID: "root", Email: "root@x.com", Role: string(rbac.RoleSuperAdmin)},
	{ID: "boss", Email: "boss@x.com", Role: string(rbac.RoleAdmin)},
	{ID: "writer", Email: "writer@x.com", Role: string(rbac.RoleAuthor)},
	{ID: "plain", Email: "plain@x.com"},
}

// Env is a fiber app with the api authentication in front of the handlers.
type Env struct {
	App  *fiber.App
	Deps *handler.Deps
	DB   *gorm.DB
}

// New builds an environment and lets each register function add its routes on the
// authenticated api group.
func New(t *testing.T, registers ...func(fiber.Router, *handler.Deps)) *Env {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	for _, u := range Users {
		require.NoError(t, user.Create(context.Background(), db, &u))
	}

	registry := rbac.Default()

	parser, err := token.NewParser(Secret, "", 0)
	require.NoError(t, err)

	trail, err := audit.NewTrail(audit.NewMemoryStore(0))
	require.NoError(t, err)

	sessions, err := clientsession.NewManager(session.New().Storage)
	require.NoError(t, err)

	verifier := auth.NewVerifier(registry, parser, auth.NewGormIdentityStore(db))

	deps := &handler.Deps{
		Cfg: &config.Config{
			Title:     "test",
			Webserver: config.Webserver{Port: 8080, APIPrefix: Prefix},
		},
		Registry: registry,
		Guard:    auth.NewMiddleware(verifier, trail, auth.NewFailureTracker(0, 0, 0)),
		Roles:    auth.NewService(db, registry),
		Trail:    trail,
		Sessions: sessions,
	}

	app := fiber.New()
	app.Use(requestid.New())

	api := app.Group(Prefix, deps.Guard.Authenticate())
	for _, register := range registers {
		register(api, deps)
	}

	return &Env{App: app, Deps: deps, DB: db}
}

// Unified returns a fresh unified bearer token.
func Unified(t *testing.T, userID string, role rbac.Role) string {
	t.Helper()

	raw, err := token.EncodeUnified(token.UnifiedPayload{
		Email:     userID + "@x.com",
		Role:      string(role),
		UserID:    userID,
		SessionID: "sess-" + userID,
		Timestamp: time.Now().UnixMilli(),
	})
	require.NoError(t, err)

	return raw
}

// Do sends a request with an optional bearer token and JSON body and returns
// the response with its body.
func (e *Env) Do(t *testing.T, method, path, bearer string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(b)
	}

	if !strings.HasPrefix(path, Prefix) {
		path = Prefix + path
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, out
}

// Entries returns the audit entries recorded for action, newest first.
func (e *Env) Entries(t *testing.T, action audit.Action) []audit.Entry {
	t.Helper()

	entries, err := e.Deps.Trail.Query(context.Background(), audit.Filter{Action: action})
	require.NoError(t, err)

	return entries
}
