package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the canonical acting identity. Every core operation takes
// its user fields from here, never from request payloads.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// Sign mints a bearer token for a principal. Token issuance proper lives
// with the external auth service; this exists for the seeder and tests.
func Sign(secret string, p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   p.ID,
		Username: p.Username,
		Avatar:   p.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
