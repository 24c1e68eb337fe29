// Package main provides the entry point of admin-authz, the authorization
// and audit service of the NewsTrnt CMS admin. It verifies unified and
// structured bearer tokens, enforces role based permissions and level
// thresholds on the admin api and records admin activity in an audit trail
// that can be queried, summarized and exported as CSV.
package main
