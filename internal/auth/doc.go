// Package auth turns bearer credentials into identities and guards routes
// with them.
//
// A Verifier accepts two credential families: unified session tokens issued
// by the CMS front end, and HMAC-signed JWTs. Signed tokens either carry the
// identity directly or only name a subject, which is resolved through an
// IdentityStore under a bounded timeout. Verification results are never
// cached.
//
// Guards (RequireIdentity, RequirePermission, RequireAnyPermission and
// RequireMinLevel) check a resolved Identity and fail with a typed *Error.
// Middleware wraps both steps as fiber handlers, answers failures with a JSON
// body carrying a correlation id and audits denied access.
//
// Example usage:
//
//	verifier := auth.NewVerifier(rbac.Default(), parser, auth.NewGormIdentityStore(db))
//	mw := auth.NewMiddleware(verifier, trail, auth.NewFailureTracker(0, 0, 0))
//
//	api := app.Group("/api/admin", mw.Authenticate())
//	api.Get("/audit", mw.RequirePermission(rbac.PermSystemLogs), handler)
package auth
