package audit

import (
	"fmt"
	"strings"
)

// Action is an audit action tag. The set is closed.
type Action string

// Authentication events.
const (
	ActionLoginSuccess   Action = "LOGIN_SUCCESS"
	ActionLoginFailed    Action = "LOGIN_FAILED"
	ActionLogout         Action = "LOGOUT"
	ActionSessionExpired Action = "SESSION_EXPIRED"
	ActionPasswordChange Action = "PASSWORD_CHANGE"
	ActionMFAEnabled     Action = "MFA_ENABLED"
	ActionMFADisabled    Action = "MFA_DISABLED"
)

// User management events.
const (
	ActionUserCreate       Action = "USER_CREATE"
	ActionUserUpdate       Action = "USER_UPDATE"
	ActionUserDelete       Action = "USER_DELETE"
	ActionUserBan          Action = "USER_BAN"
	ActionUserUnban        Action = "USER_UNBAN"
	ActionUserStatusChange Action = "USER_STATUS_CHANGE"
	ActionUserBulkAction   Action = "USER_BULK_ACTION"
)

// Role and permission events.
const (
	ActionRoleAssign       Action = "ROLE_ASSIGN"
	ActionRoleRevoke       Action = "ROLE_REVOKE"
	ActionRoleChange       Action = "ROLE_CHANGE"
	ActionPermissionGrant  Action = "PERMISSION_GRANT"
	ActionPermissionRevoke Action = "PERMISSION_REVOKE"
)

// Content events.
const (
	ActionArticleCreate    Action = "ARTICLE_CREATE"
	ActionArticleUpdate    Action = "ARTICLE_UPDATE"
	ActionArticleDelete    Action = "ARTICLE_DELETE"
	ActionArticlePublish   Action = "ARTICLE_PUBLISH"
	ActionArticleUnpublish Action = "ARTICLE_UNPUBLISH"
	ActionArticleRestore   Action = "ARTICLE_RESTORE"
	ActionCategoryCreate   Action = "CATEGORY_CREATE"
	ActionCategoryUpdate   Action = "CATEGORY_UPDATE"
	ActionCategoryDelete   Action = "CATEGORY_DELETE"
)

// System and security events.
const (
	ActionConfigUpdate       Action = "CONFIG_UPDATE"
	ActionConfigChange       Action = "CONFIG_CHANGE"
	ActionSystemBackup       Action = "SYSTEM_BACKUP"
	ActionSystemRestore      Action = "SYSTEM_RESTORE"
	ActionAPIAccess          Action = "API_ACCESS"
	ActionUnauthorizedAccess Action = "UNAUTHORIZED_ACCESS"
	ActionRateLimitExceeded  Action = "RATE_LIMIT_EXCEEDED"
)

// severities maps every known action to its severity.
var severities = map[Action]Severity{
	ActionLoginSuccess:   SeverityInfo,
	ActionLoginFailed:    SeverityWarning,
	ActionLogout:         SeverityInfo,
	ActionSessionExpired: SeverityInfo,
	ActionPasswordChange: SeverityWarning,
	ActionMFAEnabled:     SeverityInfo,
	ActionMFADisabled:    SeverityWarning,

	ActionUserCreate:       SeverityInfo,
	ActionUserUpdate:       SeverityInfo,
	ActionUserDelete:       SeverityCritical,
	ActionUserBan:          SeverityWarning,
	ActionUserUnban:        SeverityInfo,
	ActionUserStatusChange: SeverityInfo,
	ActionUserBulkAction:   SeverityInfo,

	ActionRoleAssign:       SeverityWarning,
	ActionRoleRevoke:       SeverityWarning,
	ActionRoleChange:       SeverityWarning,
	ActionPermissionGrant:  SeverityCritical,
	ActionPermissionRevoke: SeverityCritical,

	ActionArticleCreate:    SeverityInfo,
	ActionArticleUpdate:    SeverityInfo,
	ActionArticleDelete:    SeverityWarning,
	ActionArticlePublish:   SeverityInfo,
	ActionArticleUnpublish: SeverityInfo,
	ActionArticleRestore:   SeverityInfo,
	ActionCategoryCreate:   SeverityInfo,
	ActionCategoryUpdate:   SeverityInfo,
	ActionCategoryDelete:   SeverityWarning,

	ActionConfigUpdate:       SeverityCritical,
	ActionConfigChange:       SeverityCritical,
	ActionSystemBackup:       SeverityInfo,
	ActionSystemRestore:      SeverityCritical,
	ActionAPIAccess:          SeverityInfo,
	ActionUnauthorizedAccess: SeverityCritical,
	ActionRateLimitExceeded:  SeverityWarning,
}

// Valid reports whether a is part of the taxonomy.
func (a Action) Valid() bool {
	_, ok := severities[a]

	return ok
}

// Severity returns the fixed severity of a. Unknown actions are info.
func (a Action) Severity() Severity {
	if s, ok := severities[a]; ok {
		return s
	}

	return SeverityInfo
}

// ParseAction converts a case-insensitive tag into a known Action.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}

	return a, nil
}

// Actions returns the full taxonomy in declaration order.
func Actions() []Action {
	return []Action{
		ActionLoginSuccess, ActionLoginFailed, ActionLogout, ActionSessionExpired,
		ActionPasswordChange, ActionMFAEnabled, ActionMFADisabled,
		ActionUserCreate, ActionUserUpdate, ActionUserDelete, ActionUserBan, ActionUserUnban,
		ActionUserStatusChange, ActionUserBulkAction,
		ActionRoleAssign, ActionRoleRevoke, ActionRoleChange, ActionPermissionGrant, ActionPermissionRevoke,
		ActionArticleCreate, ActionArticleUpdate, ActionArticleDelete, ActionArticlePublish,
		ActionArticleUnpublish, ActionArticleRestore,
		ActionCategoryCreate, ActionCategoryUpdate, ActionCategoryDelete,
		ActionConfigUpdate, ActionConfigChange, ActionSystemBackup, ActionSystemRestore,
		ActionAPIAccess, ActionUnauthorizedAccess, ActionRateLimitExceeded,
	}
}
