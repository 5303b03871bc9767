// Package providers implements the OAuth capability set (authorization URL,
// code exchange, token refresh) once per provider/service pair. The connect
// and sync usecases depend only on the Provider interface.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/3oMaR9914/SentryAI/internal/domain"
)

// exchangeTimeout bounds token-endpoint round-trips.
const exchangeTimeout = 10 * time.Second

// TokenSet is a provider token response. RefreshToken may be empty on
// refresh grants; the integration store preserves the previous one then.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type Provider interface {
	// Service returns the integration discriminator this variant serves.
	Service() string

	// AuthURL builds the provider authorization redirect for the user.
	AuthURL(userID uint) (string, error)

	// Exchange trades an authorization code for tokens. A failed exchange
	// is never retried; a used code cannot be replayed.
	Exchange(ctx context.Context, code string) (*TokenSet, error)

	// Refresh trades a refresh token for a new token set. Failure means
	// the integration is no longer usable.
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
}

// Registry maps service discriminators to their provider variant.
type Registry map[string]Provider

func (r Registry) Lookup(service string) (Provider, error) {
	p, ok := r[service]
	if !ok {
		return nil, fmt.Errorf("%w: unknown service %q", domain.ErrNotFound, service)
	}
	return p, nil
}

// postForm issues a single token-endpoint POST and decodes the token set.
// Non-success responses map to failErr with the provider's body attached.
func postForm(ctx context.Context, client *http.Client, req *http.Request, failErr error) (*TokenSet, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	res, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", failErr, err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", failErr, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", failErr, res.StatusCode, strings.TrimSpace(string(body)))
	}
	tokens, err := decodeTokenSet(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", failErr, err)
	}
	return tokens, nil
}

func decodeTokenSet(body []byte) (*TokenSet, error) {
	var tokens TokenSet
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}
	return &tokens, nil
}

func formRequest(method, rawURL string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequest(method, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}
