package config

import (
	"errors"
)

var (
	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if config db.gormEngine is not supported.
	ErrUnknownGormEngine = errors.New("toml config db.gormEngine must be mysql, postgres or sqlite")

	// ErrJWTSecretTooShort error if config auth.jwtSecret is set but weak.
	ErrJWTSecretTooShort = errors.New("toml config auth.jwtSecret must have at least 32 characters")

	// ErrUnknownAuditStore error if config audit.store is not supported.
	ErrUnknownAuditStore = errors.New("toml config audit.store must be sql or memory")

	// ErrNegativeRetention error if config audit.retentionDays is negative.
	ErrNegativeRetention = errors.New("toml config audit.retentionDays can not be negative")

	// ErrUnknownSessionStorage error if config session.storage is not supported.
	ErrUnknownSessionStorage = errors.New("toml config session.storage must be db or memory")
)
