// Package crypto mints and verifies the bearer tokens accepted by the
// internal job endpoints.
package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"

	// Issuer is stamped on every token and required on parse.
	Issuer = "bookfeed"
)

var (
	ErrInsufficientRole = errors.New("token role not permitted")
	ErrEmptySecret      = errors.New("empty signing secret")
)

// Claims identify an operator or scheduled job.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken mints an HS256 token for subject and returns it with its
// jti, a ULID so token ids sort by issue time.
func GenerateToken(secret, subject, role string, ttl time.Duration) (string, string, error) {
	if secret == "" {
		return "", "", ErrEmptySecret
	}
	now := time.Now()
	jti := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()

	c := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, jti, nil
}

// ParseToken verifies signature, algorithm, issuer and expiry.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Authorize parses tokenStr and checks its role against allowed.
func Authorize(secret, tokenStr string, allowed ...string) (*Claims, error) {
	claims, err := ParseToken(secret, tokenStr)
	if err != nil {
		return nil, err
	}
	for _, role := range allowed {
		if claims.Role == role {
			return claims, nil
		}
	}
	return nil, ErrInsufficientRole
}
