package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectConfigPath(t *testing.T) string {
	t.Helper()

	// Get the project root by going up from internal/config
	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err, "failed to get project root")

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, mainFile), []byte(content), 0o600))

	return dir
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.Equal(t, 8080, cfg.Webserver.Port)
	assert.Equal(t, "/api/admin", cfg.Webserver.APIPrefix)
	assert.Equal(t, EngineSQLite, cfg.DB.GormEngine)

	assert.Equal(t, "info", cfg.Log.LogLevel)
	assert.True(t, cfg.Log.Console.Enabled)
	assert.Equal(t, "audit.log", cfg.Log.File.Audit.Name)
	assert.Equal(t, 90, cfg.Log.File.Audit.MaxAge)

	assert.Equal(t, 30*time.Second, cfg.Auth.JWTLeeway)
	assert.Equal(t, 3*time.Second, cfg.Auth.LookupTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Auth.FailureWindow)
	assert.Equal(t, 5, cfg.Auth.FailureThreshold)

	assert.Equal(t, AuditStoreSQL, cfg.Audit.Store)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
	assert.Equal(t, 24*time.Hour, cfg.Audit.PruneInterval)

	assert.Equal(t, SessionStorageMemory, cfg.Session.Storage)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
}

func TestReadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, "[webserver]\nport = 9000\n")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Webserver.Port)
	assert.Equal(t, 5, cfg.Webserver.ShutDownTime)
	assert.Equal(t, EngineSQLite, cfg.DB.GormEngine)
	assert.Equal(t, 3*time.Second, cfg.Auth.LookupTimeout)
	assert.Equal(t, time.Hour, cfg.Auth.JWTTTL)
	assert.Equal(t, AuditStoreSQL, cfg.Audit.Store)
	assert.Equal(t, 10000, cfg.Audit.MemoryCapacity)
	assert.Equal(t, "client_sessions", cfg.Session.Table)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read main config file")
}

func TestReadConfigEnvOverrides(t *testing.T) {
	dir := writeConfig(t, "[webserver]\nport = 9000\n[auth]\njwtIssuer = \"file\"\n")

	t.Setenv(EnvPrefix+"_AUTH_JWTISSUER", "env")
	t.Setenv(EnvConfigJSON, `{"title":"from json","audit":{"store":"memory","retentionDays":7}}`)

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "env", cfg.Auth.JWTIssuer)
	assert.Equal(t, "from json", cfg.Title)
	assert.Equal(t, AuditStoreMemory, cfg.Audit.Store)
	assert.Equal(t, 7, cfg.Audit.RetentionDays)
	assert.Equal(t, 9000, cfg.Webserver.Port, "fields absent from the json document are kept")
}

func TestReadConfigBadJSONEnv(t *testing.T) {
	dir := writeConfig(t, "[webserver]\nport = 9000\n")
	t.Setenv(EnvConfigJSON, `{"title":`)

	_, err := ReadConfig(dir)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DB:        DB{GormEngine: EngineMySQL},
			Webserver: Webserver{Port: 8080},
			Audit:     Audit{Store: AuditStoreSQL},
			Session:   Session{Storage: SessionStorageDB},
		}
	}

	testCases := []struct {
		name          string
		mutate        func(*Config)
		expectedError error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Webserver.Port = 0 }, expectedError: ErrWebServerPortCanNotBeZero},
		{name: "engine", mutate: func(c *Config) { c.DB.GormEngine = "oracle" }, expectedError: ErrUnknownGormEngine},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, expectedError: ErrJWTSecretTooShort},
		{name: "long secret", mutate: func(c *Config) { c.Auth.JWTSecret = "0123456789abcdef0123456789abcdef" }},
		{name: "audit store", mutate: func(c *Config) { c.Audit.Store = "kafka" }, expectedError: ErrUnknownAuditStore},
		{name: "retention", mutate: func(c *Config) { c.Audit.RetentionDays = -1 }, expectedError: ErrNegativeRetention},
		{name: "session storage", mutate: func(c *Config) { c.Session.Storage = "redis" }, expectedError: ErrUnknownSessionStorage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)

			err := validate(c)
			if tc.expectedError == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tc.expectedError)
		})
	}
}

func TestDumpConfigRedacts(t *testing.T) {
	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	cfg.DB.Password = "db-password"
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"

	out, err := DumpConfig(cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "db-password")
	assert.NotContains(t, out, cfg.Auth.JWTSecret)

	var decoded map[string]any
	require.NoError(t, toml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, cfg.Title, decoded["title"])

	db, ok := decoded["db"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, redacted, db["password"])

	js, err := DumpConfigJSON(cfg)
	require.NoError(t, err)
	assert.NotContains(t, js, "db-password")

	var fromJSON Config
	require.NoError(t, json.Unmarshal([]byte(js), &fromJSON))
	assert.Equal(t, cfg.Audit, fromJSON.Audit)
	assert.Equal(t, redacted, fromJSON.Auth.JWTSecret)

	assert.Equal(t, "db-password", cfg.DB.Password, "the caller's config is untouched")
}
