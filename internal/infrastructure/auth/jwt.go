// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

// Package auth validates the bearer tokens the CRM gateway issues for
// this service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crmsuite/zoom-sync-service/internal/logging"
)

// JWTAuthConfig is the configuration for JWT bearer token validation.
type JWTAuthConfig struct {
	// Secret is the shared HMAC signing secret.
	Secret string
	// Audience, when set, must match the token's aud claim.
	Audience string
	// MockLocalPrincipal bypasses validation and returns this principal
	// for every request. Local development only.
	MockLocalPrincipal string
}

// JWTAuth validates bearer tokens and extracts the caller principal.
type JWTAuth struct {
	config JWTAuthConfig
}

// NewJWTAuth creates a new JWTAuth from the given configuration.
func NewJWTAuth(config JWTAuthConfig) (*JWTAuth, error) {
	if config.Secret == "" && config.MockLocalPrincipal == "" {
		return nil, errors.New("auth secret must be configured")
	}
	return &JWTAuth{config: config}, nil
}

// ParsePrincipal validates the bearer token and returns the principal it
// was issued to.
func (a *JWTAuth) ParsePrincipal(ctx context.Context, bearerToken string) (string, error) {
	if a.config.MockLocalPrincipal != "" {
		slog.WarnContext(ctx, "JWT authentication is disabled, using mock principal",
			"principal", a.config.MockLocalPrincipal,
		)
		return a.config.MockLocalPrincipal, nil
	}

	rawToken := strings.TrimSpace(strings.TrimPrefix(bearerToken, "Bearer "))
	if rawToken == "" {
		return "", errors.New("bearer token is required")
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.config.Audience != "" {
		options = append(options, jwt.WithAudience(a.config.Audience))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(_ *jwt.Token) (any, error) {
		return []byte(a.config.Secret), nil
	}, options...)
	if err != nil {
		slog.DebugContext(ctx, "token validation failed", logging.ErrKey, err)
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no principal")
	}

	return claims.Subject, nil
}
