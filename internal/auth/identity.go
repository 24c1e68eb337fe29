package auth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/newstrnt/admin-authz/internal/rbac"
)

// Source records how an identity was resolved.
type Source string

const (
	SourceUnified   Source = "unified"
	SourceJWTDirect Source = "jwt-direct"
	SourceJWTLookup Source = "jwt-lookup"
)

// Identity is the caller resolved from a bearer credential. Permissions is a
// snapshot that is always a subset of the registry set of Role.
type Identity struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	Role        rbac.Role `json:"role"`
	Level       int       `json:"level"`
	Permissions []string  `json:"permissions"`
	// Super is set for a wildcard identity at the registry's top level.
	Super          bool      `json:"super"`
	SessionID      string    `json:"sessionId,omitempty"`
	IssuedAt       time.Time `json:"issuedAt,omitzero"`
	ExpiresAt      time.Time `json:"expiresAt,omitzero"`
	LastActivityAt time.Time `json:"lastActivityAt,omitzero"`
	Source         Source    `json:"source"`
}

// Can reports whether the permission snapshot grants tag.
func (i *Identity) Can(tag string) bool {
	return i != nil && rbac.Grants(i.Permissions, tag)
}

type identityContextKey struct{}

// localsIdentity is the fiber.Locals key holding the *Identity.
const localsIdentity = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*Identity)

	return id, ok && id != nil
}

// IdentityFromLocals returns the identity attached by Middleware.Authenticate,
// or nil.
func IdentityFromLocals(c *fiber.Ctx) *Identity {
	id, _ := c.Locals(localsIdentity).(*Identity)

	return id
}

func attachIdentity(c *fiber.Ctx, id *Identity) {
	c.Locals(localsIdentity, id)
	c.SetUserContext(WithIdentity(c.UserContext(), id))
}
