package rbac

// Permission constants define the guarded capabilities of the admin area.
// Tags are namespaced as resource.action.
const (
	// PermWildcard grants every permission.
	PermWildcard = "*"

	// PermDashboardView allows viewing the main dashboard.
	PermDashboardView = "dashboard.view"
	// PermDashboardAdvanced allows viewing advanced dashboard widgets.
	PermDashboardAdvanced = "dashboard.advanced"

	PermContentView      = "content.view"
	PermContentCreate    = "content.create"
	PermContentEdit      = "content.edit"
	PermContentEditOwn   = "content.edit_own"
	PermContentDelete    = "content.delete"
	PermContentDeleteOwn = "content.delete_own"
	PermContentPublish   = "content.publish"
	PermContentUnpublish = "content.unpublish"
	PermContentSchedule  = "content.schedule"
	PermContentFeature   = "content.feature"
	PermContentRestore   = "content.restore"

	PermCategoriesView   = "categories.view"
	PermCategoriesManage = "categories.manage"
	PermTagsView         = "tags.view"
	PermTagsManage       = "tags.manage"

	PermMediaView   = "media.view"
	PermMediaUpload = "media.upload"
	PermMediaDelete = "media.delete"

	PermUsersView        = "users.view"
	PermUsersCreate      = "users.create"
	PermUsersEdit        = "users.edit"
	PermUsersDelete      = "users.delete"
	PermUsersBan         = "users.ban"
	PermUsersManageRoles = "users.manage_roles"

	PermAnalyticsView     = "analytics.view"
	PermAnalyticsExport   = "analytics.export"
	PermAnalyticsAdvanced = "analytics.advanced"

	PermCommentsView     = "comments.view"
	PermCommentsModerate = "comments.moderate"
	PermCommentsDelete   = "comments.delete"
	PermReportsView      = "reports.view"
	PermReportsResolve   = "reports.resolve"

	PermNewsletterView            = "newsletter.view"
	PermNewsletterSend            = "newsletter.send"
	PermNewsletterManageTemplates = "newsletter.manage_templates"

	PermAdvertisingView   = "advertising.view"
	PermAdvertisingManage = "advertising.manage"

	// System permissions are only reachable through the wildcard.
	PermSystemView         = "system.view"
	PermSystemSettings     = "system.settings"
	PermSystemSecurity     = "system.security"
	PermSystemIntegrations = "system.integrations"
	PermSystemBackup       = "system.backup"
	PermSystemLogs         = "system.logs"

	PermAdminsView   = "admins.view"
	PermAdminsCreate = "admins.create"
	PermAdminsEdit   = "admins.edit"
	PermAdminsDelete = "admins.delete"

	PermConfigView       = "config.view"
	PermConfigEdit       = "config.edit"
	PermConfigBranding   = "config.branding"
	PermConfigMarketData = "config.market_data"
)

// Grants reports whether a permission snapshot allows tag.
// The wildcard allows every tag.
func Grants(perms []string, tag string) bool {
	for _, p := range perms {
		if p == PermWildcard || p == tag {
			return true
		}
	}

	return false
}
