package auth

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Code identifies an authorization failure.
type Code string

// Failure codes. Each request ends with at most one of them.
const (
	CodeMissingToken      Code = "MISSING_TOKEN"
	CodeInvalidToken      Code = "INVALID_TOKEN"
	CodeSessionExpired    Code = "SESSION_EXPIRED"
	CodeInvalidRole       Code = "INVALID_ROLE"
	CodeIdentityNotFound  Code = "IDENTITY_NOT_FOUND"
	CodeUnauthenticated   Code = "UNAUTHENTICATED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeInsufficientLevel Code = "INSUFFICIENT_LEVEL"
)

// Error is a typed authorization failure. errors.Is matches on Code, so a
// detailed *Error matches the sentinel of the same code.
type Error struct {
	Code    Code
	Message string
	// Permission is the tag a Forbidden guard asked for.
	Permission string
	// RequiredLevel and ActualLevel are set by InsufficientLevel.
	RequiredLevel int
	ActualLevel   int
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message

	switch e.Code {
	case CodeForbidden:
		if e.Permission != "" {
			msg += fmt.Sprintf(" (permission %s)", e.Permission)
		}
	case CodeInsufficientLevel:
		msg += fmt.Sprintf(" (required %d, actual %d)", e.RequiredLevel, e.ActualLevel)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Code == e.Code
}

// HTTPStatus maps the code to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidRole, CodeForbidden, CodeInsufficientLevel:
		return fiber.StatusForbidden
	default:
		return fiber.StatusUnauthorized
	}
}

// SecurityRelevant reports whether the failure is audited on its own.
// Repeated invalid tokens are audited separately by the failure tracker.
func (e *Error) SecurityRelevant() bool {
	return e.Code == CodeForbidden || e.Code == CodeInsufficientLevel
}

func (e *Error) with(err error) *Error {
	out := *e
	out.Err = err

	return &out
}

var (
	// ErrMissingToken is returned when the request carries no bearer credential.
	ErrMissingToken = &Error{Code: CodeMissingToken, Message: "authentication required"}

	// ErrInvalidToken is returned for malformed or unverifiable credentials,
	// and when the identity lookup fails or times out.
	ErrInvalidToken = &Error{Code: CodeInvalidToken, Message: "invalid token"}

	// ErrSessionExpired is returned for a unified token past its lifetime.
	ErrSessionExpired = &Error{Code: CodeSessionExpired, Message: "session expired"}

	// ErrInvalidRole is returned for a well-formed token naming an unknown role.
	ErrInvalidRole = &Error{Code: CodeInvalidRole, Message: "invalid role"}

	// ErrIdentityNotFound is returned when a token subject has no backing record.
	ErrIdentityNotFound = &Error{Code: CodeIdentityNotFound, Message: "identity not found"}

	// ErrUnauthenticated is returned by a guard that received no identity.
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated, Message: "not authenticated"}

	// ErrForbidden is returned when the identity lacks a required permission.
	ErrForbidden = &Error{Code: CodeForbidden, Message: "insufficient permissions"}

	// ErrInsufficientLevel is returned when the identity is below a required level.
	ErrInsufficientLevel = &Error{Code: CodeInsufficientLevel, Message: "insufficient role level"}

	// ErrUserNotFound is returned by an IdentityStore for an unknown id.
	ErrUserNotFound = errors.New("user not found")

	// ErrCannotManageRole is returned when an actor may not assign a role.
	ErrCannotManageRole = errors.New("role cannot be managed by actor")
)

// AsError extracts an *Error from err. Errors of any other type become
// ErrInvalidToken wrapping err.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return ErrInvalidToken.with(err)
}
