package daemon

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/newstrnt/admin-authz/internal/config"
	"github.com/newstrnt/admin-authz/internal/db/controller/user"
	"github.com/newstrnt/admin-authz/internal/db/models"
	"github.com/newstrnt/admin-authz/internal/rbac"
	"github.com/newstrnt/admin-authz/internal/token"
)

// seedEmail is the address of the seeded super administrator.
const seedEmail = "admin@localhost"

// seed creates the super administrator if the users table is empty.
func seed(_ *config.Config, db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to count users")
	}

	if count > 0 {
		return nil
	}

	if err := user.Create(context.Background(), db, &models.User{
		ID:         token.SuperAdminID,
		Email:      seedEmail,
		IsAdmin:    true,
		IsVerified: true,
		Role:       string(rbac.RoleSuperAdmin),
	}); err != nil {
		return errors.Wrap(err, "failed to seed super admin")
	}

	log.Info().Str("user_id", token.SuperAdminID).Msg("seeded super admin user")

	return nil
}
