// Package jwtmw provides bearer-token authorization for gin routes.
package jwtmw

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret  = errors.New("jwt secret is empty")
	ErrMissingClaim = errors.New("token has no subject")
)

// Authorizer decides whether a bearer token grants access.
// It returns the authenticated subject on success.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (string, error)
}

type hmacVerifier struct {
	secret []byte
	parser *jwt.Parser
}

var _ Authorizer = (*hmacVerifier)(nil)

// NewHMACVerifier verifies HS256 tokens signed with secret.
func NewHMACVerifier(secret string) (Authorizer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &hmacVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

func (v *hmacVerifier) Authorize(_ context.Context, tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := v.parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" {
		return "", ErrMissingClaim
	}
	return claims.Subject, nil
}
