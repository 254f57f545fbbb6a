// Package auth validates access tokens issued by the upstream suite auth
// service. This service never issues user tokens itself; it only verifies
// the shared-secret signature and extracts the actor identity.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"velora/internal/core/appcontext"
)

// JWTConfig holds token validation configuration.
type JWTConfig struct {
	Secret string
	Issuer string
}

// Claims carried in suite access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// JWTValidator verifies access tokens.
type JWTValidator struct {
	config JWTConfig
}

// NewJWTValidator creates a token validator.
func NewJWTValidator(config JWTConfig) *JWTValidator {
	return &JWTValidator{config: config}
}

// ValidateToken verifies the signature and returns the actor identity.
func (v *JWTValidator) ValidateToken(tokenString string) (*appcontext.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if v.config.Issuer != "" && claims.Issuer != v.config.Issuer {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token carries no user id")
	}

	return &appcontext.Actor{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

// SignToken issues a token for the given actor. Used by tests and local
// tooling; production tokens come from the suite auth service.
func SignToken(config JWTConfig, actor appcontext.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.Issuer,
			Subject:   actor.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: actor.UserID,
		Email:  actor.Email,
		Name:   actor.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
