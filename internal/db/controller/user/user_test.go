package user

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/newstrnt/admin-authz/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, Create(ctx, db, &models.User{ID: "u1", Email: "a@x.com", IsAdmin: true, IsVerified: true}))

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		id            string
		expectedError error
		expectedEmail string
	}{
		{name: "nil database", dbParam: nil, id: "u1", expectedError: ErrDBNil},
		{name: "empty id", dbParam: db, id: "", expectedError: ErrUserIDEmpty},
		{name: "user not found", dbParam: db, id: "missing", expectedError: ErrUserNotFound},
		{name: "successful get", dbParam: db, id: "u1", expectedEmail: "a@x.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := Get(ctx, tc.dbParam, tc.id)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, u)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedEmail, u.Email)
			assert.True(t, u.IsAdmin)
			assert.True(t, u.IsVerified)
		})
	}
}

func TestGetCanceledContext(t *testing.T) {
	db := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Get(ctx, db, "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestSetRole(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, Create(ctx, db, &models.User{ID: "u1", Email: "a@x.com", Role: "AUTHOR"}))

	previous, err := SetRole(ctx, db, "u1", "EDITOR")
	require.NoError(t, err)
	assert.Equal(t, "AUTHOR", previous)

	u, err := Get(ctx, db, "u1")
	require.NoError(t, err)
	assert.Equal(t, "EDITOR", u.Role)

	_, err = SetRole(ctx, db, "missing", "EDITOR")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = SetRole(ctx, nil, "u1", "EDITOR")
	require.ErrorIs(t, err, ErrDBNil)
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.ErrorIs(t, Create(ctx, nil, &models.User{ID: "u1"}), ErrDBNil)
	require.ErrorIs(t, Create(ctx, db, &models.User{Email: "a@x.com"}), ErrUserIDEmpty)

	require.NoError(t, Create(ctx, db, &models.User{ID: "u1", Email: "a@x.com"}))
	require.Error(t, Create(ctx, db, &models.User{ID: "u1", Email: "b@x.com"}), "duplicate id")
}
