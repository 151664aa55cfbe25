// Package security provides token inspection, value sealing and id generation
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrNotJWT is returned when a bearer token is not a decodable JWT. Opaque
// tokens are legal; they just carry no inspectable claims.
var ErrNotJWT = errors.New("token is not a JWT")

// TokenInfo holds the unverified claims a client may show to the user.
// Signature checks belong to the remote API; nothing here is trusted.
type TokenInfo struct {
	Subject   string    `json:"subject,omitempty"`
	Issuer    string    `json:"issuer,omitempty"`
	IssuedAt  time.Time `json:"issuedAt,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Role      string    `json:"role,omitempty"`
}

// Expired reports whether the token carries an expiry that lies before now
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// InspectToken decodes a JWT payload without verifying its signature
func InspectToken(tokenString string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return TokenInfo{}, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	info := TokenInfo{}
	if sub, ok := claims["sub"].(string); ok {
		info.Subject = sub
	} else if id, ok := claims["id"].(string); ok {
		info.Subject = id
	}
	if iss, ok := claims["iss"].(string); ok {
		info.Issuer = iss
	}
	if role, ok := claims["role"].(string); ok {
		info.Role = role
	}
	if iat, ok := claims["iat"].(float64); ok {
		info.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := claims["exp"].(float64); ok {
		info.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return info, nil
}

// SignToken issues an HS256 token. Used by tooling and tests that need a
// realistic bearer token; the storefront itself never mints credentials.
func SignToken(subject, role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
