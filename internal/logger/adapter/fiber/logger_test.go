package fiber_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/newstrnt/admin-authz/internal/logger/adapter/fiber"

	"github.com/newstrnt/admin-authz/internal/logger"
)

// accessLine implements the access log json format.
type accessLine struct {
	IP            string  `json:"IP"`
	Status        int     `json:"status"`
	XPerformance  float64 `json:"X-Performance"`
	URI           string  `json:"URI"`
	Method        string  `json:"method"`
	Host          string  `json:"host"`
	CorrelationID string  `json:"correlationId"`
}

func newTestApp(cfg adapter.Config) *fiber.App {
	app := fiber.New(fiber.Config{CaseSensitive: true, Immutable: true})
	app.Use(requestid.New())
	app.Use(adapter.New(cfg))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("hello test")
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/boom", func(_ *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	return app
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		targetPath string
		status     int
		uri        string
	}{
		{name: "root", targetPath: "/", status: fiber.StatusOK, uri: "/"},
		{name: "query string", targetPath: "/?test=123", status: fiber.StatusOK, uri: "/?test=123"},
		{name: "multiple slashes", targetPath: "//test", status: fiber.StatusNotFound, uri: "//test"},
		{name: "handler error", targetPath: "/boom", status: fiber.StatusTeapot, uri: "/boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			app := newTestApp(adapter.Config{Output: &buf})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.targetPath, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Performance"))

			var line accessLine
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

			assert.Equal(t, tt.status, line.Status)
			assert.Equal(t, tt.uri, line.URI)
			assert.Equal(t, fiber.MethodGet, line.Method)
			assert.Equal(t, "example.com", line.Host)
			assert.Equal(t, "0.0.0.0", line.IP)
			assert.Equal(t, resp.Header.Get(fiber.HeaderXRequestID), line.CorrelationID)
			assert.NotEmpty(t, line.CorrelationID)
		})
	}
}

func TestHealthzSkipped(t *testing.T) {
	var buf bytes.Buffer

	app := newTestApp(adapter.Config{
		Output: &buf,
		Config: logger.Log{DisableHealthz: true},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Empty(t, buf.String())

	_, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.NotEmpty(t, buf.String())
}

func TestNoWriters(t *testing.T) {
	app := fiber.New()
	app.Use(adapter.New())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
