package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/newstrnt/admin-authz/internal/db/controller/user"
	"github.com/newstrnt/admin-authz/internal/rbac"
)

// RoleChange describes a completed role assignment.
type RoleChange struct {
	UserID string    `json:"userId"`
	From   rbac.Role `json:"from"`
	To     rbac.Role `json:"to"`
}

// Service performs role administration on stored users.
type Service struct {
	db       *gorm.DB
	registry *rbac.Registry
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, registry *rbac.Registry) *Service {
	return &Service{db: db, registry: registry}
}

// EffectiveRole returns the role a record resolves to: its stored role, or
// ADMIN or VIEWER from the admin flag.
func EffectiveRole(registry *rbac.Registry, rec *IdentityRecord) (rbac.Role, error) {
	if rec.Role != "" {
		return registry.ParseRole(rec.Role)
	}

	if rec.IsAdmin {
		return rbac.RoleAdmin, nil
	}

	return rbac.RoleViewer, nil
}

// ChangeRole assigns role to the user targetID on behalf of actor. The actor
// needs users.manage_roles and must be able to manage both the current and
// the new role of the target. Nobody changes their own role.
func (s *Service) ChangeRole(ctx context.Context, actor *Identity, targetID string, role rbac.Role) (*RoleChange, error) {
	if err := RequirePermission(actor, rbac.PermUsersManageRoles); err != nil {
		return nil, err
	}

	if _, err := s.registry.Lookup(role); err != nil {
		return nil, err
	}

	if targetID == actor.UserID {
		return nil, fmt.Errorf("%w: own role", ErrCannotManageRole)
	}

	rec, err := NewGormIdentityStore(s.db).FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	current, err := EffectiveRole(s.registry, rec)
	if err != nil {
		return nil, err
	}

	for _, r := range []rbac.Role{current, role} {
		ok, err := s.registry.CanManage(actor.Role, r)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, fmt.Errorf("%w: %s cannot manage %s", ErrCannotManageRole, actor.Role, r)
		}
	}

	if _, err := user.SetRole(ctx, s.db, targetID, string(role)); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to set role: %w", err)
	}

	return &RoleChange{UserID: targetID, From: current, To: role}, nil
}
