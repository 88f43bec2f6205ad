// Package jwtx reads the forum backend's access tokens. The client never
// verifies signatures (it does not hold the backend secret); it only needs
// the expiry and identity claims. HS256 signing lives here too so test
// backends can mint tokens in the same format.
package jwtx

import (
	"errors"
	"time"

	"github.com/aussiebroadwan/forum/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// Token kinds carried in the "type" claim. Access tokens omit it.
const (
	TypeRefresh = "refresh"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrNoExpiry    = errors.New("jwtx: token has no exp claim")
)

// Claims mirrors what the forum backend puts into its tokens.
type Claims struct {
	jwt.RegisteredClaims

	UserID       int64  `json:"user_id"`
	Username     string `json:"username,omitempty"`
	TokenVersion int    `json:"token_version"`
	Role         int    `json:"role,omitempty"`
	Type         string `json:"type,omitempty"`
}

// NewAccessClaims builds access-token claims valid from now for ttl.
func NewAccessClaims(userID int64, username string, version int, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:       userID,
		Username:     username,
		TokenVersion: version,
	}
}

// NewRefreshClaims builds refresh-token claims valid from now for ttl.
func NewRefreshClaims(userID int64, version int, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        idx.NewAt(now).String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:       userID,
		TokenVersion: version,
		Type:         TypeRefresh,
	}
}

// ExpiresWithin reports whether the token expires less than d after now.
// Tokens without exp never do.
func (c *Claims) ExpiresWithin(d time.Duration, now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Add(d).Before(c.ExpiresAt.Time)
}

// ValidateExpiryWithLeeway checks exp and nbf allowing for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration, now time.Time) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
