package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/novathreads/storefront-backend/pkg/enums"
)

// AccessTokenPayload is what login and registration know about a shopper or
// admin at the moment a token is minted. An empty JTI gets a fresh uuid.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.UserRole
	JTI    string
}

func (p AccessTokenPayload) validate() error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	if !p.Role.IsValid() {
		return fmt.Errorf("invalid user role %q", p.Role)
	}
	return nil
}

// AccessTokenClaims is the bearer token body. RequireAuth copies user_id,
// email and role into the request context.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Email  string         `json:"email"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func newAccessTokenClaims(p AccessTokenPayload, issuer, jti string, issued time.Time, ttl time.Duration) AccessTokenClaims {
	return AccessTokenClaims{
		UserID: p.UserID,
		Email:  p.Email,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
			ID:        jti,
		},
	}
}

// complete reports whether a verified token still names a user and a known role.
func (c *AccessTokenClaims) complete() bool {
	return c.UserID != uuid.Nil && c.Role.IsValid()
}
