package users

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the structured claims carried by issued tokens
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	Expires() time.Time
	IssuedTime() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. The subject is
// the account email; userId and role ride along as custom claims.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"userId,omitempty"`
	UserRole string `json:"role,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim, the account email
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the account id claim
func (c *JWTClaims) UserID() string {
	return c.UID
}

// Role returns the account role claim
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedTime returns the issued-at time
func (c *JWTClaims) IssuedTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
