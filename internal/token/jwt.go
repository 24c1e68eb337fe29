package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SuperAdminID is the account id reserved for the built-in super administrator.
const SuperAdminID = "super-admin"

// Claims of a structured token. Either the direct shape
// {id, email, isAdmin: true} or a subject-only shape {userId}.
type Claims struct {
	jwt.RegisteredClaims
	// AccountID is the "id" claim of the direct shape.
	AccountID    string `json:"id,omitempty"`
	Email        string `json:"email,omitempty"`
	IsAdmin      bool   `json:"isAdmin,omitempty"`
	IsSuperAdmin bool   `json:"isSuperAdmin,omitempty"`
	// Role optionally names the role of a direct identity.
	Role   string `json:"role,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// SuperAdmin reports whether the claims describe the super administrator.
func (c *Claims) SuperAdmin() bool {
	return c.AccountID == SuperAdminID || c.IsSuperAdmin
}

// Direct reports whether the claims embed an administrative identity that
// can be resolved without a store lookup.
func (c *Claims) Direct() bool {
	return c.AccountID != "" && c.Email != "" && (c.IsAdmin || c.SuperAdmin())
}

// SubjectID returns the id to look up for indirect claims: userId, then sub,
// then id.
func (c *Claims) SubjectID() (string, error) {
	switch {
	case c.UserID != "":
		return c.UserID, nil
	case c.Subject != "":
		return c.Subject, nil
	case c.AccountID != "":
		return c.AccountID, nil
	default:
		return "", ErrMissingSubject
	}
}

var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// Parser verifies HMAC-signed structured tokens.
type Parser struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewParser returns a parser for secret. An empty issuer disables the issuer
// check. Expiry is always required.
func NewParser(secret []byte, issuer string, leeway time.Duration) (*Parser, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(hmacMethods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}

	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &Parser{secret: secret, opts: opts}, nil
}

// Parse verifies the signature and registered claims of raw.
func (p *Parser) Parse(raw string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, p.opts...)
	if err != nil {
		return nil, fmt.Errorf("parse structured token: %w", err)
	}

	return claims, nil
}

// Signer issues HS256 structured tokens.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a signer. Tokens without an expiry get now+ttl.
func NewSigner(secret []byte, issuer string, ttl time.Duration) (*Signer, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}

	return &Signer{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Sign fills issuer, issued-at and expiry when unset and signs the claims.
func (s *Signer) Sign(c Claims) (string, error) {
	now := s.now()

	if c.Issuer == "" {
		c.Issuer = s.issuer
	}

	if c.IssuedAt == nil {
		c.IssuedAt = jwt.NewNumericDate(now)
	}

	if c.ExpiresAt == nil {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign structured token: %w", err)
	}

	return signed, nil
}
