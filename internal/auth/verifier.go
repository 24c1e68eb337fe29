package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/newstrnt/admin-authz/internal/rbac"
	"github.com/newstrnt/admin-authz/internal/token"
)

// DefaultLookupTimeout bounds the identity store call of a subject-only token.
const DefaultLookupTimeout = 3 * time.Second

// Verifier resolves a raw bearer credential into an Identity.
// It keeps no per-request state and caches nothing.
type Verifier struct {
	registry      *rbac.Registry
	parser        *token.Parser
	store         IdentityStore
	lookupTimeout time.Duration
	now           func() time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithLookupTimeout overrides DefaultLookupTimeout.
func WithLookupTimeout(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		if d > 0 {
			v.lookupTimeout = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// NewVerifier returns a verifier. A nil store rejects subject-only tokens as
// invalid.
func NewVerifier(registry *rbac.Registry, parser *token.Parser, store IdentityStore, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		registry:      registry,
		parser:        parser,
		store:         store,
		lookupTimeout: DefaultLookupTimeout,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Verify returns exactly one of a resolved identity or an *Error.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}

	c := token.Classify(raw)

	switch c.Kind {
	case token.Unified:
		return v.verifyUnified(c.Payload)
	case token.Structured, token.Unrecognized:
		return v.verifyStructured(ctx, c.Raw)
	default:
		return nil, ErrInvalidToken
	}
}

func (v *Verifier) verifyUnified(p *token.UnifiedPayload) (*Identity, error) {
	now := v.now()

	if p.Expired(now) {
		return nil, ErrSessionExpired
	}

	role, err := v.registry.ParseRole(p.Role)
	if err != nil {
		return nil, ErrInvalidRole.with(err)
	}

	cfg, err := v.registry.Lookup(role)
	if err != nil {
		return nil, ErrInvalidRole.with(err)
	}

	perms := cfg.Permissions
	if len(p.Permissions) > 0 {
		perms = narrow(cfg.Permissions, p.Permissions)
	}

	return v.identity(cfg, perms, &Identity{
		UserID:         p.UserID,
		Email:          p.Email,
		SessionID:      p.SessionID,
		IssuedAt:       p.IssuedAt(),
		ExpiresAt:      p.ExpiresAt(),
		LastActivityAt: now,
		Source:         SourceUnified,
	}), nil
}

func (v *Verifier) verifyStructured(ctx context.Context, raw string) (*Identity, error) {
	if v.parser == nil {
		return nil, ErrInvalidToken
	}

	claims, err := v.parser.Parse(raw)
	if err != nil {
		return nil, ErrInvalidToken.with(err)
	}

	id := &Identity{
		SessionID:      claims.ID,
		LastActivityAt: v.now(),
	}

	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}

	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}

	if claims.Direct() {
		return v.resolveDirect(claims, id)
	}

	return v.resolveLookup(ctx, claims, id)
}

func (v *Verifier) resolveDirect(claims *token.Claims, id *Identity) (*Identity, error) {
	var role rbac.Role

	switch {
	case claims.SuperAdmin():
		role = rbac.RoleSuperAdmin
	case claims.Role != "":
		r, err := v.registry.ParseRole(claims.Role)
		if err != nil {
			return nil, ErrInvalidRole.with(err)
		}

		role = r
	default:
		role = rbac.RoleAdmin
	}

	cfg, err := v.registry.Lookup(role)
	if err != nil {
		return nil, ErrInvalidRole.with(err)
	}

	id.UserID = claims.AccountID
	id.Email = claims.Email
	id.Source = SourceJWTDirect

	return v.identity(cfg, cfg.Permissions, id), nil
}

func (v *Verifier) resolveLookup(ctx context.Context, claims *token.Claims, id *Identity) (*Identity, error) {
	subject, err := claims.SubjectID()
	if err != nil {
		return nil, ErrInvalidToken.with(err)
	}

	if v.store == nil {
		return nil, ErrInvalidToken
	}

	rec, err := v.lookup(ctx, subject)

	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, ErrIdentityNotFound.with(err)
	case err != nil:
		return nil, ErrInvalidToken.with(err)
	case rec == nil:
		return nil, ErrIdentityNotFound
	}

	role, err := EffectiveRole(v.registry, rec)
	if err != nil {
		return nil, ErrInvalidRole.with(err)
	}

	cfg, err := v.registry.Lookup(role)
	if err != nil {
		return nil, ErrInvalidRole.with(err)
	}

	id.UserID = rec.ID
	id.Email = rec.Email
	id.Source = SourceJWTLookup

	return v.identity(cfg, cfg.Permissions, id), nil
}

type lookupResult struct {
	rec *IdentityRecord
	err error
}

// lookup bounds FindByID by the lookup timeout even when the store does not
// honour its context.
func (v *Verifier) lookup(ctx context.Context, subject string) (*IdentityRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, v.lookupTimeout)
	defer cancel()

	done := make(chan lookupResult, 1)
	go func() {
		rec, err := v.store.FindByID(ctx, subject)
		done <- lookupResult{rec: rec, err: err}
	}()

	select {
	case r := <-done:
		return r.rec, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (v *Verifier) identity(cfg rbac.RoleConfig, perms []string, id *Identity) *Identity {
	id.Role = cfg.Name
	id.Level = cfg.Level
	id.Permissions = perms
	id.Super = v.registry.IsSuperRole(cfg.Name) && rbac.Grants(perms, rbac.PermWildcard)

	return id
}

// narrow keeps the requested tags the role grants, in request order.
func narrow(granted, requested []string) []string {
	out := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))

	for _, p := range requested {
		if _, ok := seen[p]; ok {
			continue
		}

		seen[p] = struct{}{}

		if rbac.Grants(granted, p) {
			out = append(out, p)
		}
	}

	return out
}
