package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	repo "github.com/3oMaR9914/SentryAI/internal/adapters/postgres"
	"github.com/3oMaR9914/SentryAI/internal/crypt"
	"github.com/3oMaR9914/SentryAI/internal/domain"
	"github.com/3oMaR9914/SentryAI/internal/providers"
	pkglog "github.com/3oMaR9914/SentryAI/pkg/log"
)

// Fetcher wraps outbound provider resource calls with the single recovery
// mechanism for token expiry: one refresh-and-retry on an unauthorized
// response, persisted through the integration store. Every provider resource
// accessor goes through here; nothing retries beyond that one attempt.
type Fetcher struct {
	integrations repo.IntegrationRepository
	registry     providers.Registry
	cipher       *crypt.Cipher
	logger       pkglog.Logger
	client       *http.Client
}

func NewFetcher(integrations repo.IntegrationRepository, registry providers.Registry, cipher *crypt.Cipher, logger pkglog.Logger) *Fetcher {
	return &Fetcher{
		integrations: integrations,
		registry:     registry,
		cipher:       cipher,
		logger:       logger,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// GetJSON issues an authorized GET for the user's integration and decodes
// the response body into out.
func (f *Fetcher) GetJSON(ctx context.Context, userID uint, service, rawURL string, params url.Values, out any) error {
	integration, err := f.Integration(ctx, userID, service)
	if err != nil {
		return err
	}
	return f.getJSON(ctx, integration, rawURL, params, out)
}

// Integration resolves the user's grant for the service, mapping absence to
// ErrNotConnected.
func (f *Fetcher) Integration(ctx context.Context, userID uint, service string) (*domain.Integration, error) {
	integration, err := f.integrations.Find(ctx, userID, service)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotConnected, service)
		}
		return nil, err
	}
	return integration, nil
}

func (f *Fetcher) getJSON(ctx context.Context, integration *domain.Integration, rawURL string, params url.Values, out any) error {
	accessToken, err := f.cipher.Decrypt(integration.AccessToken)
	if err != nil {
		return err
	}

	status, body, err := f.do(ctx, rawURL, params, accessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if status == http.StatusUnauthorized {
		accessToken, err = f.refreshTokens(ctx, integration)
		if err != nil {
			return err
		}
		status, body, err = f.do(ctx, rawURL, params, accessToken)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
		}
		if status == http.StatusUnauthorized {
			return fmt.Errorf("%w: still unauthorized after refresh", domain.ErrUpstreamAuth)
		}
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, status, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return nil
}

func (f *Fetcher) do(ctx context.Context, rawURL string, params url.Values, accessToken string) (int, []byte, error) {
	target := rawURL
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	res, err := f.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return 0, nil, err
	}
	return res.StatusCode, body, nil
}

// refreshTokens exchanges the stored refresh token and persists the result,
// keeping the old refresh token when the provider omits a new one.
func (f *Fetcher) refreshTokens(ctx context.Context, integration *domain.Integration) (string, error) {
	if integration.RefreshToken == nil {
		return "", fmt.Errorf("%w: no refresh token stored", domain.ErrUpstreamAuth)
	}
	provider, err := f.registry.Lookup(integration.Service)
	if err != nil {
		return "", err
	}
	refreshToken, err := f.cipher.Decrypt(*integration.RefreshToken)
	if err != nil {
		return "", err
	}
	tokens, err := provider.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if err := applyTokenSet(f.cipher, integration, tokens); err != nil {
		return "", err
	}
	if err := f.integrations.Update(ctx, integration); err != nil {
		return "", err
	}
	f.logger.Info().Uint("user_id", integration.UserID).Str("service", integration.Service).Msg("access token refreshed")
	return tokens.AccessToken, nil
}

// applyTokenSet encrypts and writes a token set onto an integration.
// Providers may omit the refresh token on refresh grants; the previous one
// stays valid and is preserved.
func applyTokenSet(cipher *crypt.Cipher, integration *domain.Integration, tokens *providers.TokenSet) error {
	sealed, err := cipher.Encrypt(tokens.AccessToken)
	if err != nil {
		return err
	}
	integration.AccessToken = sealed
	expiresIn := tokens.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	integration.Expiry = time.Now().UTC().Add(time.Duration(expiresIn) * time.Second)
	if tokens.RefreshToken != "" {
		sealedRefresh, err := cipher.Encrypt(tokens.RefreshToken)
		if err != nil {
			return err
		}
		integration.RefreshToken = &sealedRefresh
	}
	return nil
}
