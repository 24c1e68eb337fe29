package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxUnifiedAge is the absolute lifetime of a unified token, counted from its
// timestamp.
const MaxUnifiedAge = 8 * time.Hour

var validate = validator.New()

// UnifiedPayload is the JSON document carried by a unified token.
type UnifiedPayload struct {
	Email     string `json:"email" validate:"required"`
	Role      string `json:"role" validate:"required"`
	UserID    string `json:"userId" validate:"required"`
	SessionID string `json:"sessionId" validate:"required"`
	// Timestamp is the issue time in milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp" validate:"required"`
	// Permissions optionally narrows the role's permission set.
	Permissions []string `json:"permissions,omitempty"`
}

// IssuedAt returns the timestamp as a time.
func (p UnifiedPayload) IssuedAt() time.Time {
	return time.UnixMilli(p.Timestamp)
}

// ExpiresAt returns the end of the absolute lifetime.
func (p UnifiedPayload) ExpiresAt() time.Time {
	return p.IssuedAt().Add(MaxUnifiedAge)
}

// Expired reports whether the token is older than MaxUnifiedAge at now.
// A token exactly MaxUnifiedAge old is still valid.
func (p UnifiedPayload) Expired(now time.Time) bool {
	return now.Sub(p.IssuedAt()) > MaxUnifiedAge
}

// EncodeUnified serializes a payload into the unified wire form.
func EncodeUnified(p UnifiedPayload) (string, error) {
	if err := validate.Struct(p); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal unified payload: %w", err)
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

// decodeUnified attempts the unified decode chain. Any failure yields
// ok == false and the caller falls through to structured verification.
func decodeUnified(raw string) (*UnifiedPayload, bool) {
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(raw)
		if err != nil {
			return nil, false
		}
	}

	if !utf8.Valid(b) {
		return nil, false
	}

	s := strings.TrimSpace(string(b))
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, false
	}

	var p UnifiedPayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, false
	}

	if err := validate.Struct(p); err != nil {
		return nil, false
	}

	return &p, true
}
