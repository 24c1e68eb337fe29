package config

import (
	"time"

	"github.com/newstrnt/admin-authz/internal/logger"
)

// Backends of the audit store and the client session storage.
const (
	AuditStoreSQL        = "sql"
	AuditStoreMemory     = "memory"
	SessionStorageDB     = "db"
	SessionStorageMemory = "memory"
)

// Config overall data structure.
type Config struct {
	DevMode   bool       `mapstructure:"devMode" toml:"devMode" json:"devMode"` // enable dev mode for development
	Title     string     `mapstructure:"title" toml:"title" json:"title"`
	DB        DB         `mapstructure:"db" toml:"db" json:"db"`
	Log       logger.Log `mapstructure:"log" toml:"log" json:"log"`
	Webserver Webserver  `mapstructure:"webserver" toml:"webserver" json:"webserver"`
	Auth      Auth       `mapstructure:"auth" toml:"auth" json:"auth"`
	Audit     Audit      `mapstructure:"audit" toml:"audit" json:"audit"`
	Session   Session    `mapstructure:"session" toml:"session" json:"session"`
}

// Webserver implement webserver settings.
type Webserver struct {
	Port           int    `mapstructure:"port" toml:"port" json:"port"`                               // listening port for the webserver
	ShutDownTime   int    `mapstructure:"shutDownTime" toml:"shutDownTime" json:"shutDownTime"`       // wait time for shutdown in seconds
	DisableRecover bool   `mapstructure:"disableRecover" toml:"disableRecover" json:"disableRecover"` // disable recover middleware
	CleanPath      bool   `mapstructure:"cleanPath" toml:"cleanPath" json:"cleanPath"`                // allow multi slash requests
	APIPrefix      string `mapstructure:"apiPrefix" toml:"apiPrefix" json:"apiPrefix"`                // mount point of the admin api
}

// Auth holds the credential verification settings.
type Auth struct {
	// JWTSecret signs and verifies structured tokens. Empty disables them.
	JWTSecret string        `mapstructure:"jwtSecret" toml:"jwtSecret" json:"jwtSecret"`
	JWTIssuer string        `mapstructure:"jwtIssuer" toml:"jwtIssuer" json:"jwtIssuer"`
	JWTLeeway time.Duration `mapstructure:"jwtLeeway" toml:"jwtLeeway" json:"jwtLeeway"`
	JWTTTL    time.Duration `mapstructure:"jwtTTL" toml:"jwtTTL" json:"jwtTTL"` // lifetime of tokens issued by the cli

	LookupTimeout time.Duration `mapstructure:"lookupTimeout" toml:"lookupTimeout" json:"lookupTimeout"`

	// Repeated invalid credentials from one client address.
	FailureThreshold   int           `mapstructure:"failureThreshold" toml:"failureThreshold" json:"failureThreshold"`
	FailureWindow      time.Duration `mapstructure:"failureWindow" toml:"failureWindow" json:"failureWindow"`
	FailureTrackerSize int           `mapstructure:"failureTrackerSize" toml:"failureTrackerSize" json:"failureTrackerSize"`
}

// Audit settings.
type Audit struct {
	Store          string        `mapstructure:"store" toml:"store" json:"store"` // sql or memory
	MemoryCapacity int           `mapstructure:"memoryCapacity" toml:"memoryCapacity" json:"memoryCapacity"`
	RetentionDays  int           `mapstructure:"retentionDays" toml:"retentionDays" json:"retentionDays"`
	PruneInterval  time.Duration `mapstructure:"pruneInterval" toml:"pruneInterval" json:"pruneInterval"` // 0 disables pruning
}

// Session settings of the client session mirror.
type Session struct {
	Storage     string        `mapstructure:"storage" toml:"storage" json:"storage"` // db or memory
	Table       string        `mapstructure:"table" toml:"table" json:"table"`
	IdleTimeout time.Duration `mapstructure:"idleTimeout" toml:"idleTimeout" json:"idleTimeout"`
}
