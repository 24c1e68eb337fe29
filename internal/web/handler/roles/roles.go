// Package roles exposes the role registry and role assignment.
package roles

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/newstrnt/admin-authz/internal/audit"
	"github.com/newstrnt/admin-authz/internal/auth"
	"github.com/newstrnt/admin-authz/internal/rbac"
	"github.com/newstrnt/admin-authz/internal/web/handler"
)

const (
	// PathRoles lists the role table.
	PathRoles = handler.RootPath + "roles"
	// PathManageable lists the roles a role may administer.
	PathManageable = PathRoles + "/:role/manageable"
	// PathUserRole assigns a role to a user.
	PathUserRole = handler.RootPath + "users/:id/role"

	codeCannotManageRole = "CANNOT_MANAGE_ROLE"
	codeUnknownRole      = "UNKNOWN_ROLE"
	codeUserNotFound     = "USER_NOT_FOUND"
)

// Service serves role routes.
type Service struct {
	deps     *handler.Deps
	validate *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// AssignRequest is the body of PUT /users/:id/role.
type AssignRequest struct {
	Role string `json:"role" validate:"required,max=32"`
}

// Init registers routes. The router must already authenticate.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) {
	if router == nil || !deps.Valid() {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)
		return
	}

	s.deps = deps
	s.validate = validator.New()

	manage := deps.Guard.RequirePermission(rbac.PermUsersManageRoles)

	router.Get(PathRoles, manage, s.List)
	router.Get(PathManageable, manage, s.Manageable)
	router.Put(PathUserRole, manage, s.Assign)
}

// List returns every configured role ordered by level, highest first.
func (s *Service) List(c *fiber.Ctx) error {
	return c.JSON(s.deps.Registry.Roles())
}

// Manageable returns the roles the path role may administer.
func (s *Service) Manageable(c *fiber.Ctx) error {
	role, err := s.deps.Registry.ParseRole(strings.TrimSpace(c.Params("role")))
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, codeUnknownRole, err.Error())
	}

	out, err := s.deps.Registry.ManageableRoles(role)
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, codeUnknownRole, err.Error())
	}

	return c.JSON(out)
}

// Assign changes the role of the path user.
func (s *Service) Assign(c *fiber.Ctx) error {
	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.CodeBadRequest, "invalid request body")
	}

	if err := s.validate.Struct(req); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.CodeBadRequest, err.Error())
	}

	role, err := s.deps.Registry.ParseRole(strings.TrimSpace(req.Role))
	if err != nil {
		return handler.Error(c, fiber.StatusBadRequest, codeUnknownRole, err.Error())
	}

	targetID := c.Params("id")
	actor := auth.IdentityFromLocals(c)

	change, err := s.deps.Roles.ChangeRole(c.UserContext(), actor, targetID, role)
	if err != nil {
		return s.assignError(c, actor, targetID, role, err)
	}

	ev := handler.Event(c, audit.ActionRoleChange)
	ev.ResourceType = "user"
	ev.ResourceID = change.UserID
	ev.Details = map[string]any{"from": change.From, "to": change.To}
	ev.OldValues = map[string]any{"role": change.From}
	ev.NewValues = map[string]any{"role": change.To}
	s.deps.Trail.Record(c.UserContext(), ev)

	log.Info().
		Str("actor", actor.UserID).
		Str("user_id", change.UserID).
		Str("from", string(change.From)).
		Str("to", string(change.To)).
		Msg("role changed")

	return c.JSON(change)
}

func (s *Service) assignError(c *fiber.Ctx, actor *auth.Identity, targetID string, role rbac.Role, err error) error {
	var authErr *auth.Error

	switch {
	case errors.As(err, &authErr):
		return c.Status(authErr.HTTPStatus()).JSON(handler.ErrorBody{
			Error:         authErr.Message,
			Code:          string(authErr.Code),
			CorrelationID: auth.CorrelationID(c),
		})
	case errors.Is(err, auth.ErrCannotManageRole):
		ev := handler.Event(c, audit.ActionUnauthorizedAccess)
		ev.ResourceType = "user"
		ev.ResourceID = targetID
		ev.Details = map[string]any{"requestedRole": role}
		ev.ErrorMessage = err.Error()
		s.deps.Trail.Record(c.UserContext(), ev)

		log.Warn().Err(err).Str("actor", actor.UserID).Str("user_id", targetID).Msg("role change rejected")

		return handler.Error(c, fiber.StatusForbidden, codeCannotManageRole, err.Error())
	case errors.Is(err, rbac.ErrUnknownRole):
		return handler.Error(c, fiber.StatusBadRequest, codeUnknownRole, err.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		return handler.Error(c, fiber.StatusNotFound, codeUserNotFound, err.Error())
	default:
		log.Error().Err(err).Str("user_id", targetID).Msg("failed to change role")

		return handler.Error(c, fiber.StatusInternalServerError, handler.CodeInternal, "failed to change role")
	}
}
