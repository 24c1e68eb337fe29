package rbac

import "errors"

var (
	// ErrUnknownRole is returned for a role name that is not in the registry.
	ErrUnknownRole = errors.New("unknown role")

	// ErrDuplicateRole is returned when a role table defines a name twice.
	ErrDuplicateRole = errors.New("duplicate role")

	// ErrEmptyRegistry is returned when a registry is built without roles.
	ErrEmptyRegistry = errors.New("registry has no roles")
)
