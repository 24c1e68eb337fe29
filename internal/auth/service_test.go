package auth

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/newstrnt/admin-authz/internal/db/controller/user"
	"github.com/newstrnt/admin-authz/internal/db/models"
	"github.com/newstrnt/admin-authz/internal/rbac"
)

// setupTestDB creates an in-memory SQLite database with a few users.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err, "failed to migrate test database")

	ctx := context.Background()
	for _, u := range []models.User{
		{ID: "root", Email: "root@x.com", Role: "SUPER_ADMIN"},
		{ID: "boss", Email: "boss@x.com", Role: "ADMIN"},
		{ID: "writer", Email: "writer@x.com", Role: "AUTHOR"},
		{ID: "plain", Email: "plain@x.com"},
		{ID: "legacy", Email: "legacy@x.com", IsAdmin: true},
	} {
		require.NoError(t, user.Create(ctx, db, &u))
	}

	return db
}

// managingAdmins grants ADMIN users.manage_roles so CanManage is reachable
// below the super role.
func managingAdmins(t *testing.T) *rbac.Registry {
	t.Helper()

	roles := rbac.DefaultRoles()
	for i := range roles {
		if roles[i].Name == rbac.RoleAdmin {
			roles[i].Permissions = append(roles[i].Permissions, rbac.PermUsersManageRoles)
		}
	}

	reg, err := rbac.NewRegistry(roles...)
	require.NoError(t, err)

	return reg
}

func TestChangeRole(t *testing.T) {
	reg := managingAdmins(t)

	actor := func(id string, role rbac.Role) *Identity {
		cfg, err := reg.Lookup(role)
		require.NoError(t, err)

		return &Identity{
			UserID:      id,
			Role:        role,
			Level:       cfg.Level,
			Permissions: cfg.Permissions,
			Super:       reg.IsSuperRole(role),
		}
	}

	testCases := []struct {
		name          string
		actor         *Identity
		target        string
		role          rbac.Role
		expectedError error
		expectedFrom  rbac.Role
	}{
		{name: "admin promotes author", actor: actor("boss", rbac.RoleAdmin), target: "writer", role: rbac.RoleEditor, expectedFrom: rbac.RoleAuthor},
		{name: "admin promotes plain user", actor: actor("boss", rbac.RoleAdmin), target: "plain", role: rbac.RoleModerator, expectedFrom: rbac.RoleViewer},
		{name: "admin cannot grant admin", actor: actor("boss", rbac.RoleAdmin), target: "writer", role: rbac.RoleAdmin, expectedError: ErrCannotManageRole},
		{name: "admin cannot demote super admin", actor: actor("boss", rbac.RoleAdmin), target: "root", role: rbac.RoleViewer, expectedError: ErrCannotManageRole},
		{name: "admin cannot touch legacy admin", actor: actor("boss", rbac.RoleAdmin), target: "legacy", role: rbac.RoleViewer, expectedError: ErrCannotManageRole},
		{name: "super admin grants admin", actor: actor("root", rbac.RoleSuperAdmin), target: "legacy", role: rbac.RoleEditor, expectedFrom: rbac.RoleAdmin},
		{name: "own role", actor: actor("root", rbac.RoleSuperAdmin), target: "root", role: rbac.RoleViewer, expectedError: ErrCannotManageRole},
		{name: "editor lacks permission", actor: actor("ed", rbac.RoleEditor), target: "writer", role: rbac.RoleViewer, expectedError: ErrForbidden},
		{name: "no actor", target: "writer", role: rbac.RoleViewer, expectedError: ErrUnauthenticated},
		{name: "unknown role", actor: actor("root", rbac.RoleSuperAdmin), target: "writer", role: "JANITOR", expectedError: rbac.ErrUnknownRole},
		{name: "unknown user", actor: actor("root", rbac.RoleSuperAdmin), target: "ghost", role: rbac.RoleViewer, expectedError: ErrUserNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			svc := NewService(db, reg)
			ctx := context.Background()

			change, err := svc.ChangeRole(ctx, tc.actor, tc.target, tc.role)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, change)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedFrom, change.From)
			assert.Equal(t, tc.role, change.To)

			stored, err := user.Get(ctx, db, tc.target)
			require.NoError(t, err)
			assert.Equal(t, string(tc.role), stored.Role)
		})
	}
}

func TestChangeRoleDefaultRegistry(t *testing.T) {
	reg := rbac.Default()
	svc := NewService(setupTestDB(t), reg)

	admin := &Identity{UserID: "boss", Role: rbac.RoleAdmin, Level: rbac.LevelAdmin}
	admin.Permissions, _ = reg.Permissions(rbac.RoleAdmin)

	_, err := svc.ChangeRole(context.Background(), admin, "writer", rbac.RoleEditor)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, rbac.PermUsersManageRoles, AsError(err).Permission)
}

func TestGormIdentityStore(t *testing.T) {
	store := NewGormIdentityStore(setupTestDB(t))

	rec, err := store.FindByID(context.Background(), "legacy")
	require.NoError(t, err)
	assert.Equal(t, "legacy@x.com", rec.Email)
	assert.True(t, rec.IsAdmin)
	assert.Empty(t, rec.Role)

	_, err = store.FindByID(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}
