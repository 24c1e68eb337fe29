// Package token decodes and classifies the two bearer credential formats
// accepted by the admin API.
//
// A structured token is a three-segment HMAC-signed JWT. A unified token is
// the base64 encoding of a JSON object:
//
//	{"email":"a@x.com","role":"EDITOR","userId":"u1","sessionId":"s1","timestamp":1700000000000}
//
// with an optional "permissions" array. Classify routes a credential by shape
// only; it never verifies signatures or freshness.
package token
