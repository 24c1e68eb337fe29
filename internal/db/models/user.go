// Package models contains database model definitions.
package models

import "time"

// User is the subset of a CMS account this service reads to resolve
// subject-only tokens. The CMS owns the table; only Role is ever written here.
type User struct {
	// ID is the CMS user id, carried by tokens as userId or sub.
	ID string `gorm:"primaryKey;size:64"`
	// Email is the user's email address.
	Email string `gorm:"size:255;not null;uniqueIndex"`
	// IsAdmin marks accounts that resolve to ADMIN when Role is empty.
	IsAdmin bool `gorm:"column:is_admin;not null;default:false"`
	// IsVerified reports whether the email address was confirmed.
	IsVerified bool `gorm:"column:is_verified;not null;default:false"`
	// Role is the assigned admin role name. Empty falls back to IsAdmin.
	Role string `gorm:"size:32"`
	// CreatedAt is managed by GORM.
	CreatedAt time.Time
	// UpdatedAt is managed by GORM.
	UpdatedAt time.Time
}

// TableName returns the table name for the User model.
func (User) TableName() string {
	return "users"
}
