// Package identity serves the caller's resolved identity and its client
// session mirror.
package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/newstrnt/admin-authz/internal/audit"
	"github.com/newstrnt/admin-authz/internal/auth"
	"github.com/newstrnt/admin-authz/internal/clientsession"
	"github.com/newstrnt/admin-authz/internal/rbac"
	"github.com/newstrnt/admin-authz/internal/web/handler"
)

const (
	// PathMe returns the verified identity.
	PathMe = handler.RootPath + "me"
	// PathSession manages the client session mirror.
	PathSession = handler.RootPath + "session"

	codeNoSession = "NO_SESSION"
)

// Service serves identity routes.
type Service struct {
	deps *handler.Deps
}

// Handler is the exported instance.
var Handler = Service{}

// Me is the response of GET /me.
type Me struct {
	Identity             *auth.Identity `json:"identity"`
	DisplayName          string         `json:"displayName"`
	DashboardPath        string         `json:"dashboardPath"`
	ManageableRoles      []rbac.Role    `json:"manageableRoles"`
	InheritedPermissions []string       `json:"inheritedPermissions"`
}

// Init registers routes. The router must already authenticate.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) {
	if router == nil || !deps.Valid() {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)
		return
	}

	s.deps = deps

	router.Get(PathMe, s.Me)
	router.Post(PathSession, s.SaveSession)
	router.Get(PathSession, s.CurrentSession)
	router.Delete(PathSession, s.Logout)
}

// Me returns the identity of the request with its role presentation data.
func (s *Service) Me(c *fiber.Ctx) error {
	id := auth.IdentityFromLocals(c)
	if err := auth.RequireIdentity(id); err != nil {
		return handler.Error(c, fiber.StatusUnauthorized, string(auth.CodeUnauthenticated), err.Error())
	}

	cfg, err := s.deps.Registry.Lookup(id.Role)
	if err != nil {
		return handler.Error(c, fiber.StatusForbidden, string(auth.CodeInvalidRole), err.Error())
	}

	inherited, err := s.deps.Registry.InheritedPermissions(id.Role)
	if err != nil {
		return handler.Error(c, fiber.StatusInternalServerError, handler.CodeInternal, err.Error())
	}

	return c.JSON(Me{
		Identity:             id,
		DisplayName:          cfg.DisplayName,
		DashboardPath:        cfg.DashboardPath,
		ManageableRoles:      cfg.ManageableRoles,
		InheritedPermissions: inherited,
	})
}

func sessionKey(id *auth.Identity) string {
	if id.SessionID != "" {
		return id.UserID + ":" + id.SessionID
	}

	return id.UserID
}

// SaveSession stores the identity of the request as client session.
func (s *Service) SaveSession(c *fiber.Ctx) error {
	id := auth.IdentityFromLocals(c)
	if err := auth.RequireIdentity(id); err != nil {
		return handler.Error(c, fiber.StatusUnauthorized, string(auth.CodeUnauthenticated), err.Error())
	}

	saved, err := s.deps.Sessions.Save(sessionKey(id), id)
	if err != nil {
		if errors.Is(err, clientsession.ErrExpired) {
			return handler.Error(c, fiber.StatusUnauthorized, string(auth.CodeSessionExpired), err.Error())
		}

		log.Error().Err(err).Str("user_id", id.UserID).Msg("failed to save client session")

		return handler.Error(c, fiber.StatusInternalServerError, handler.CodeInternal, "failed to save session")
	}

	ev := handler.Event(c, audit.ActionLoginSuccess)
	ev.ResourceType = "session"
	ev.ResourceID = id.SessionID
	ev.Details = map[string]any{"source": id.Source}
	s.deps.Trail.Record(c.UserContext(), ev)

	return c.Status(fiber.StatusCreated).JSON(saved)
}

// CurrentSession returns the client session of the request's identity.
func (s *Service) CurrentSession(c *fiber.Ctx) error {
	id := auth.IdentityFromLocals(c)
	if err := auth.RequireIdentity(id); err != nil {
		return handler.Error(c, fiber.StatusUnauthorized, string(auth.CodeUnauthenticated), err.Error())
	}

	cur, err := s.deps.Sessions.Current(sessionKey(id))

	switch {
	case err == nil:
		return c.JSON(cur)
	case errors.Is(err, clientsession.ErrNoSession):
		return handler.Error(c, fiber.StatusNotFound, codeNoSession, err.Error())
	case errors.Is(err, clientsession.ErrExpired), errors.Is(err, clientsession.ErrIdle):
		ev := handler.Event(c, audit.ActionSessionExpired)
		ev.ResourceType = "session"
		ev.ResourceID = id.SessionID
		s.deps.Trail.Record(c.UserContext(), ev)

		return handler.Error(c, fiber.StatusUnauthorized, string(auth.CodeSessionExpired), err.Error())
	default:
		log.Error().Err(err).Str("user_id", id.UserID).Msg("failed to read client session")

		return handler.Error(c, fiber.StatusInternalServerError, handler.CodeInternal, "failed to read session")
	}
}

// Logout removes the client session.
func (s *Service) Logout(c *fiber.Ctx) error {
	id := auth.IdentityFromLocals(c)
	if err := auth.RequireIdentity(id); err != nil {
		return handler.Error(c, fiber.StatusUnauthorized, string(auth.CodeUnauthenticated), err.Error())
	}

	if err := s.deps.Sessions.Logout(sessionKey(id)); err != nil {
		log.Error().Err(err).Str("user_id", id.UserID).Msg("failed to delete client session")

		return handler.Error(c, fiber.StatusInternalServerError, handler.CodeInternal, "failed to delete session")
	}

	ev := handler.Event(c, audit.ActionLogout)
	ev.ResourceType = "session"
	ev.ResourceID = id.SessionID
	s.deps.Trail.Record(c.UserContext(), ev)

	return c.SendStatus(fiber.StatusNoContent)
}
