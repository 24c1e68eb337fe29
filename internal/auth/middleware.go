package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/newstrnt/admin-authz/internal/audit"
)

const (
	// localsRequestID is the key the requestid middleware stores the id under.
	localsRequestID = "requestid"

	bearerScheme = "bearer"

	stageAuthenticate = "authenticate"
	stageGuard        = "guard"
)

// Auditor records security events.
type Auditor interface {
	Record(ctx context.Context, ev audit.Event) (audit.Entry, bool)
}

// Middleware builds fiber handlers that authenticate and guard routes.
type Middleware struct {
	verifier *Verifier
	auditor  Auditor
	tracker  *FailureTracker
}

// NewMiddleware returns a Middleware. auditor and tracker may be nil.
func NewMiddleware(verifier *Verifier, auditor Auditor, tracker *FailureTracker) *Middleware {
	return &Middleware{
		verifier: verifier,
		auditor:  auditor,
		tracker:  tracker,
	}
}

// errorBody is the JSON document returned for every rejected request.
type errorBody struct {
	Error         string `json:"error"`
	Code          Code   `json:"code"`
	CorrelationID string `json:"correlationId"`
	Permission    string `json:"permission,omitempty"`
	RequiredLevel int    `json:"requiredLevel,omitempty"`
	ActualLevel   *int   `json:"actualLevel,omitempty"`
}

// BearerToken extracts the credential of an "Authorization: Bearer" header.
func BearerToken(c *fiber.Ctx) string {
	scheme, credential, ok := strings.Cut(strings.TrimSpace(c.Get(fiber.HeaderAuthorization)), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return ""
	}

	return strings.TrimSpace(credential)
}

// Authenticate resolves the bearer credential and attaches the identity to
// the request. Requests without a valid credential are rejected.
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := BearerToken(c)
		if raw == "" {
			return m.deny(c, stageAuthenticate, nil, ErrMissingToken)
		}

		id, err := m.verifier.Verify(c.UserContext(), raw)
		if err != nil {
			return m.deny(c, stageAuthenticate, nil, err)
		}

		if m.tracker != nil {
			m.tracker.Reset(c.IP())
		}

		decisionsTotal.WithLabelValues(stageAuthenticate, outcomeAllow, "").Inc()
		attachIdentity(c, id)

		return c.Next()
	}
}

// RequirePermission rejects identities lacking tag.
func (m *Middleware) RequirePermission(tag string) fiber.Handler {
	return m.guard(func(id *Identity) error {
		return RequirePermission(id, tag)
	})
}

// RequireAnyPermission rejects identities holding none of tags.
func (m *Middleware) RequireAnyPermission(tags ...string) fiber.Handler {
	return m.guard(func(id *Identity) error {
		return RequireAnyPermission(id, tags...)
	})
}

// RequireMinLevel rejects identities below level.
func (m *Middleware) RequireMinLevel(level int) fiber.Handler {
	return m.guard(func(id *Identity) error {
		return RequireMinLevel(id, level)
	})
}

func (m *Middleware) guard(check func(*Identity) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := IdentityFromLocals(c)

		if err := check(id); err != nil {
			return m.deny(c, stageGuard, id, err)
		}

		decisionsTotal.WithLabelValues(stageGuard, outcomeAllow, "").Inc()

		return c.Next()
	}
}

func (m *Middleware) deny(c *fiber.Ctx, stage string, id *Identity, err error) error {
	e := AsError(err)
	cid := CorrelationID(c)

	decisionsTotal.WithLabelValues(stage, outcomeDeny, string(e.Code)).Inc()

	ev := log.Warn().
		Str("code", string(e.Code)).
		Str("path", c.Path()).
		Str("method", c.Method()).
		Str("ip", c.IP()).
		Str("correlationId", cid)
	if id != nil {
		ev = ev.Str("user_id", id.UserID).Str("role", string(id.Role))
	}

	if e.Err != nil {
		ev = ev.AnErr("cause", e.Err)
	}

	ev.Msg("request rejected")

	switch {
	case e.SecurityRelevant():
		m.audit(c, id, e, cid, nil)
	case e.Code == CodeInvalidToken && m.tracker != nil && m.tracker.Hit(c.IP()):
		m.audit(c, id, e, cid, map[string]any{
			"reason":   "repeated invalid credentials",
			"failures": m.tracker.Count(c.IP()),
		})
	}

	body := errorBody{
		Error:         e.Message,
		Code:          e.Code,
		CorrelationID: cid,
		Permission:    e.Permission,
	}

	if e.Code == CodeInsufficientLevel {
		actual := e.ActualLevel
		body.RequiredLevel = e.RequiredLevel
		body.ActualLevel = &actual
	}

	return c.Status(e.HTTPStatus()).JSON(body)
}

func (m *Middleware) audit(c *fiber.Ctx, id *Identity, e *Error, cid string, extra map[string]any) {
	if m.auditor == nil {
		return
	}

	details := map[string]any{
		"code":          e.Code,
		"method":        c.Method(),
		"correlationId": cid,
	}

	if e.Permission != "" {
		details["permission"] = e.Permission
	}

	if e.Code == CodeInsufficientLevel {
		details["requiredLevel"] = e.RequiredLevel
		details["actualLevel"] = e.ActualLevel
	}

	for k, v := range extra {
		details[k] = v
	}

	ev := audit.Event{
		Action:       audit.ActionUnauthorizedAccess,
		ResourceType: "route",
		ResourceID:   c.Path(),
		Details:      details,
		IPAddress:    c.IP(),
		UserAgent:    c.Get(fiber.HeaderUserAgent),
		Failed:       true,
		ErrorMessage: e.Message,
	}

	if id != nil {
		ev.ActorUserID = id.UserID
		ev.ActorEmail = id.Email
		ev.ActorRole = string(id.Role)
	}

	m.auditor.Record(c.UserContext(), ev)
}

// CorrelationID returns the request id set by the requestid middleware, or
// a fresh one. The id is echoed in the X-Request-ID response header.
func CorrelationID(c *fiber.Ctx) string {
	cid, _ := c.Locals(localsRequestID).(string)
	if cid == "" {
		cid = uuid.NewString()
		c.Locals(localsRequestID, cid)
	}

	c.Set(fiber.HeaderXRequestID, cid)

	return cid
}
