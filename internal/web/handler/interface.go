package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/newstrnt/admin-authz/internal/audit"
	"github.com/newstrnt/admin-authz/internal/auth"
	"github.com/newstrnt/admin-authz/internal/clientsession"
	"github.com/newstrnt/admin-authz/internal/config"
	"github.com/newstrnt/admin-authz/internal/rbac"
)

// Deps are the collaborators shared by the api handlers.
type Deps struct {
	Cfg      *config.Config
	Registry *rbac.Registry
	Guard    *auth.Middleware
	Roles    *auth.Service
	Trail    *audit.Trail
	Sessions *clientsession.Manager
}

// Valid reports whether every dependency is set.
func (d *Deps) Valid() bool {
	return d != nil && d.Cfg != nil && d.Registry != nil && d.Guard != nil &&
		d.Roles != nil && d.Trail != nil && d.Sessions != nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(router fiber.Router, deps *Deps)
}
