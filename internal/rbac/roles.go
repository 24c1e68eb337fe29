package rbac

// Role is the name of a configured admin role.
type Role string

// Built-in roles, from highest to lowest privilege.
const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleEditor     Role = "EDITOR"
	RoleAuthor     Role = "AUTHOR"
	RoleModerator  Role = "MODERATOR"
	RoleViewer     Role = "VIEWER"
)

// Level thresholds used by route guards.
const (
	LevelSuperAdmin = 100
	LevelAdmin      = 80
	LevelEditor     = 60
	LevelAuthor     = 40
	LevelModerator  = 30
	LevelViewer     = 10
)

// RoleConfig is the static definition of a role.
type RoleConfig struct {
	Name        Role   `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	// Level is the privilege rank used by threshold checks. It does not imply
	// permission inheritance.
	Level int `json:"level"`
	// Permissions is the complete permission set of the role.
	Permissions []string `json:"permissions"`
	// ManageableRoles lists the roles this role may administer.
	ManageableRoles []Role `json:"manageableRoles"`
	// DashboardPath is the landing page of the role in the admin UI.
	DashboardPath string `json:"dashboardPath"`
}

func (c RoleConfig) clone() RoleConfig {
	c.Permissions = append([]string(nil), c.Permissions...)
	c.ManageableRoles = append([]Role(nil), c.ManageableRoles...)

	return c
}

// DefaultRoles returns the built-in role table.
func DefaultRoles() []RoleConfig {
	return []RoleConfig{
		{
			Name:          RoleSuperAdmin,
			DisplayName:   "Super Administrator",
			Description:   "Full system access. Can manage all settings, users, and content.",
			Level:         LevelSuperAdmin,
			Permissions:   []string{PermWildcard},
			DashboardPath: "/admin",
			ManageableRoles: []Role{
				RoleSuperAdmin, RoleAdmin, RoleEditor, RoleAuthor, RoleModerator, RoleViewer,
			},
		},
		{
			Name:        RoleAdmin,
			DisplayName: "Administrator",
			Description: "Full content and user management. Cannot access system settings.",
			Level:       LevelAdmin,
			Permissions: []string{
				PermDashboardView, PermDashboardAdvanced,
				PermContentView, PermContentCreate, PermContentEdit, PermContentDelete,
				PermContentPublish, PermContentUnpublish, PermContentSchedule, PermContentFeature,
				PermContentRestore,
				PermCategoriesView, PermCategoriesManage,
				PermTagsView, PermTagsManage,
				PermMediaView, PermMediaUpload, PermMediaDelete,
				PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete, PermUsersBan,
				PermAnalyticsView, PermAnalyticsExport, PermAnalyticsAdvanced,
				PermCommentsView, PermCommentsModerate, PermCommentsDelete,
				PermReportsView, PermReportsResolve,
				PermNewsletterView, PermNewsletterSend, PermNewsletterManageTemplates,
				PermAdvertisingView, PermAdvertisingManage,
				PermConfigView, PermConfigEdit, PermConfigMarketData,
			},
			DashboardPath:   "/admin",
			ManageableRoles: []Role{RoleEditor, RoleAuthor, RoleModerator, RoleViewer},
		},
		{
			Name:        RoleEditor,
			DisplayName: "Editor",
			Description: "Senior content manager. Can publish and edit all content.",
			Level:       LevelEditor,
			Permissions: []string{
				PermDashboardView,
				PermContentView, PermContentCreate, PermContentEdit, PermContentDelete,
				PermContentPublish, PermContentUnpublish, PermContentSchedule, PermContentFeature,
				PermContentRestore,
				PermCategoriesView, PermCategoriesManage,
				PermTagsView, PermTagsManage,
				PermMediaView, PermMediaUpload, PermMediaDelete,
				PermAnalyticsView,
				PermCommentsView, PermCommentsModerate, PermCommentsDelete,
				PermReportsView, PermReportsResolve,
			},
			DashboardPath:   "/admin/content",
			ManageableRoles: []Role{RoleAuthor},
		},
		{
			Name:        RoleAuthor,
			DisplayName: "Author",
			Description: "Content creator. Can create drafts and edit own content.",
			Level:       LevelAuthor,
			Permissions: []string{
				PermDashboardView,
				PermContentView, PermContentCreate, PermContentEditOwn, PermContentDeleteOwn,
				PermCategoriesView,
				PermTagsView,
				PermMediaView, PermMediaUpload,
				PermAnalyticsView,
			},
			DashboardPath: "/admin/content/drafts",
		},
		{
			Name:        RoleModerator,
			DisplayName: "Moderator",
			Description: "Community manager. Handles comments and user reports.",
			Level:       LevelModerator,
			Permissions: []string{
				PermDashboardView,
				PermContentView,
				PermCommentsView, PermCommentsModerate, PermCommentsDelete,
				PermReportsView, PermReportsResolve,
				PermUsersView, PermUsersBan,
			},
			DashboardPath: "/admin/moderation",
		},
		{
			Name:          RoleViewer,
			DisplayName:   "Viewer",
			Description:   "Read-only access to content and analytics.",
			Level:         LevelViewer,
			Permissions:   []string{PermDashboardView, PermAnalyticsView},
			DashboardPath: "/admin/analytics",
		},
	}
}
