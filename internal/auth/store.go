package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/newstrnt/admin-authz/internal/db/controller/user"
)

// IdentityRecord is the read-only view of a CMS user.
type IdentityRecord struct {
	ID         string
	Email      string
	IsAdmin    bool
	IsVerified bool
	// Role is optional. When empty the admin flag decides between ADMIN and VIEWER.
	Role string
}

// IdentityStore finds users by id. Implementations return ErrUserNotFound
// for unknown ids and must honor ctx cancellation.
type IdentityStore interface {
	FindByID(ctx context.Context, id string) (*IdentityRecord, error)
}

// GormIdentityStore reads identities from the users table.
type GormIdentityStore struct {
	db *gorm.DB
}

// NewGormIdentityStore returns a store backed by db.
func NewGormIdentityStore(db *gorm.DB) *GormIdentityStore {
	return &GormIdentityStore{db: db}
}

// FindByID implements IdentityStore.
func (s *GormIdentityStore) FindByID(ctx context.Context, id string) (*IdentityRecord, error) {
	u, err := user.Get(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &IdentityRecord{
		ID:         u.ID,
		Email:      u.Email,
		IsAdmin:    u.IsAdmin,
		IsVerified: u.IsVerified,
		Role:       u.Role,
	}, nil
}
