// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
)

// tokenExpiryLeeway is how long before the reported expiry a cached token
// is treated as expired, so in-flight requests never carry a token that
// dies mid-request.
const tokenExpiryLeeway = 60 * time.Second

// TokenManager caches the Zoom Server-to-Server OAuth token and refreshes
// it on demand. Concurrent callers share one refresh; only the first
// caller pays the round trip.
type TokenManager struct {
	mu          sync.Mutex
	oauthConfig *clientcredentials.Config
	httpClient  *http.Client
	source      oauth2.TokenSource
}

// Ensure that TokenManager implements oauth2.TokenSource
var _ oauth2.TokenSource = (*TokenManager)(nil)

// NewTokenManager creates a token manager for the given OAuth config.
func NewTokenManager(oauthConfig *clientcredentials.Config, httpClient *http.Client) *TokenManager {
	tm := &TokenManager{
		oauthConfig: oauthConfig,
		httpClient:  httpClient,
	}
	tm.source = tm.newSource()
	return tm
}

func (tm *TokenManager) newSource() oauth2.TokenSource {
	// The token endpoint call goes through our own HTTP client so it gets
	// the same timeout as API requests.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, tm.httpClient)
	return oauth2.ReuseTokenSourceWithExpiry(nil, tm.oauthConfig.TokenSource(ctx), tokenExpiryLeeway)
}

// Token implements oauth2.TokenSource. It returns the cached token when
// still valid, otherwise it fetches a fresh one.
func (tm *TokenManager) Token() (*oauth2.Token, error) {
	tm.mu.Lock()
	source := tm.source
	tm.mu.Unlock()

	token, err := source.Token()
	if err != nil {
		// Only a response from the token endpoint means the credential was
		// rejected; anything else is a failure to reach it.
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, domain.NewAuthenticationError("Zoom rejected the OAuth credential", err)
		}
		return nil, domain.NewTransportError("failed to reach Zoom token endpoint", err)
	}
	return token, nil
}

// GetValidToken returns the bearer token string, refreshing it if needed.
func (tm *TokenManager) GetValidToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	token, err := tm.Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one.
// Used when the platform rejects a token that has not expired yet.
func (tm *TokenManager) Invalidate() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.source = tm.newSource()
}
