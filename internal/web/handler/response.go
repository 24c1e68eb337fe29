package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/newstrnt/admin-authz/internal/audit"
	"github.com/newstrnt/admin-authz/internal/auth"
)

// ErrorBody is the JSON document of a failed api call. It has the same
// shape as the authorization failures of auth.Middleware.
type ErrorBody struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	CorrelationID string `json:"correlationId"`
}

// Error writes an ErrorBody with status.
func Error(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(ErrorBody{
		Error:         msg,
		Code:          code,
		CorrelationID: auth.CorrelationID(c),
	})
}

// Event returns an audit event attributed to the caller of c.
func Event(c *fiber.Ctx, action audit.Action) audit.Event {
	ev := audit.Event{
		Action:    action,
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}

	if id := auth.IdentityFromLocals(c); id != nil {
		ev.ActorUserID = id.UserID
		ev.ActorEmail = id.Email
		ev.ActorRole = string(id.Role)
	}

	return ev
}
