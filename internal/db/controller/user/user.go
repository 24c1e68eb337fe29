// Package user provides read access and role assignment for CMS users.
package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/newstrnt/admin-authz/internal/db/models"
)

var (
	// ErrUserNotFound is returned when no user has the requested id.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserIDEmpty is returned when a lookup is attempted with an empty id.
	ErrUserIDEmpty = errors.New("user id cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a user by id.
func Get(ctx context.Context, db *gorm.DB, id string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if id == "" {
		return nil, ErrUserIDEmpty
	}

	var u models.User
	result := db.WithContext(ctx).Where("id = ?", id).First(&u)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &u, nil
}

// Create inserts a user.
func Create(ctx context.Context, db *gorm.DB, u *models.User) error {
	if db == nil {
		return ErrDBNil
	}
	if u.ID == "" {
		return ErrUserIDEmpty
	}

	return db.WithContext(ctx).Create(u).Error
}

// SetRole assigns a role name to a user and returns the previous one.
func SetRole(ctx context.Context, db *gorm.DB, id, role string) (string, error) {
	if db == nil {
		return "", ErrDBNil
	}

	var previous string

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := Get(ctx, tx, id)
		if err != nil {
			return err
		}

		previous = u.Role

		return tx.Model(&models.User{}).Where("id = ?", id).Update("role", role).Error
	})
	if err != nil {
		return "", err
	}

	return previous, nil
}
