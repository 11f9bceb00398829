// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/auth"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/pkg/constants"
)

// skipAuthPaths are served without a bearer token: probes and metrics
// carry no caller identity, and the Zoom webhook endpoint authenticates
// with its own HMAC signature.
var skipAuthPaths = map[string]bool{
	"/livez":         true,
	"/readyz":        true,
	"/metrics":       true,
	"/webhooks/zoom": true,
}

// AuthorizationMiddleware creates a middleware that validates the bearer
// token on every request and puts the caller principal on the context.
func AuthorizationMiddleware(jwtAuth *auth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipAuthPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			bearerToken := r.Header.Get(constants.AuthorizationHeader)
			principal, err := jwtAuth.ParsePrincipal(ctx, bearerToken)
			if err != nil {
				slog.DebugContext(ctx, "request authentication failed", logging.ErrKey, err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				if encErr := json.NewEncoder(w).Encode(map[string]string{"error": "invalid or missing bearer token"}); encErr != nil {
					slog.ErrorContext(ctx, "failed to write response", logging.ErrKey, encErr)
				}
				return
			}

			ctx = context.WithValue(ctx, constants.AuthorizationContextID, bearerToken)
			ctx = context.WithValue(ctx, constants.PrincipalContextID, principal)
			ctx = logging.AppendCtx(ctx, slog.String("principal", principal))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
