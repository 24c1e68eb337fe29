// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvConfigJSON holds a JSON document merged over the file configuration.
	EnvConfigJSON = "ADMIN_AUTHZ_CONFIG_JSON"

	// EnvPrefix prefixes single-key overrides, e.g. ADMIN_AUTHZ_AUTH_JWTSECRET.
	EnvPrefix = "ADMIN_AUTHZ"

	mainFile = "main.toml"
	redacted = "********"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, mainFile))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "admin-authz")
	v.SetDefault("db.gormEngine", EngineSQLite)
	v.SetDefault("db.name", "admin-authz.db")
	v.SetDefault("log.logLevel", "info")
	v.SetDefault("log.console.enabled", true)
	v.SetDefault("webserver.shutDownTime", 5)
	v.SetDefault("webserver.apiPrefix", "/api/admin")
	v.SetDefault("auth.jwtTTL", time.Hour)
	v.SetDefault("auth.lookupTimeout", 3*time.Second)
	v.SetDefault("auth.failureThreshold", 5)
	v.SetDefault("auth.failureWindow", 5*time.Minute)
	v.SetDefault("auth.failureTrackerSize", 4096)
	v.SetDefault("audit.store", AuditStoreSQL)
	v.SetDefault("audit.memoryCapacity", 10000)
	v.SetDefault("audit.retentionDays", 90)
	v.SetDefault("audit.pruneInterval", 24*time.Hour)
	v.SetDefault("session.storage", SessionStorageMemory)
	v.SetDefault("session.table", "client_sessions")
	v.SetDefault("session.idleTimeout", 30*time.Minute)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config from env "+EnvConfigJSON)
	}

	return c, nil
}

// Redacted returns a copy without secrets, suitable for dumps and logs.
func (c Config) Redacted() Config {
	if c.DB.Password != "" {
		c.DB.Password = redacted
	}

	if c.Auth.JWTSecret != "" {
		c.Auth.JWTSecret = redacted
	}

	return c
}

// DumpConfig config as TOML String. Secrets are redacted.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)
	t.SetIndentTables(true)

	if err := t.Encode(c.Redacted()); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String. Secrets are redacted.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c.Redacted()); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings.
func validate(c Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return errors.Wrap(ErrJWTSecretTooShort, invalidErrMessage)
	}

	switch c.Audit.Store {
	case AuditStoreSQL, AuditStoreMemory:
	default:
		return errors.Wrap(ErrUnknownAuditStore, invalidErrMessage)
	}

	if c.Audit.RetentionDays < 0 {
		return errors.Wrap(ErrNegativeRetention, invalidErrMessage)
	}

	switch c.Session.Storage {
	case SessionStorageDB, SessionStorageMemory:
	default:
		return errors.Wrap(ErrUnknownSessionStorage, invalidErrMessage)
	}

	return nil
}
