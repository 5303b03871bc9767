package providers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/3oMaR9914/SentryAI/config"
	"github.com/3oMaR9914/SentryAI/internal/crypt"
	"github.com/3oMaR9914/SentryAI/internal/domain"
)

const (
	googleAuthEndpoint  = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenEndpoint = "https://oauth2.googleapis.com/token"
)

// Google is one provider variant per Google service: the same client
// registration serves calendar and tasks through the redirect-URI
// discriminator.
type Google struct {
	clientID     string
	clientSecret string
	scopes       string
	service      string
	redirectURI  string
	codec        *crypt.Cipher
	client       *http.Client

	authEndpoint  string
	tokenEndpoint string
}

func NewGoogleCalendar(cfg *config.Config, codec *crypt.Cipher) *Google {
	return newGoogle(cfg, codec, domain.ServiceGoogleCalendar, "calendar", cfg.GoogleCalendarScopes)
}

func NewGoogleTasks(cfg *config.Config, codec *crypt.Cipher) *Google {
	return newGoogle(cfg, codec, domain.ServiceGoogleTasks, "tasks", cfg.GoogleTasksScopes)
}

func newGoogle(cfg *config.Config, codec *crypt.Cipher, service, discriminator, scopes string) *Google {
	return &Google{
		clientID:      cfg.GoogleClientID,
		clientSecret:  cfg.GoogleClientSecret,
		scopes:        scopes,
		service:       service,
		redirectURI:   cfg.GoogleRedirectURI(discriminator),
		codec:         codec,
		client:        &http.Client{},
		authEndpoint:  googleAuthEndpoint,
		tokenEndpoint: googleTokenEndpoint,
	}
}

func (g *Google) Service() string { return g.service }

func (g *Google) AuthURL(userID uint) (string, error) {
	state, err := g.codec.EncodeState(userID)
	if err != nil {
		return "", err
	}
	params := url.Values{}
	params.Set("client_id", g.clientID)
	params.Set("redirect_uri", g.redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", g.scopes)
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")
	// state is already percent-encoded by the codec
	return g.authEndpoint + "?" + params.Encode() + "&state=" + state, nil
}

func (g *Google) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", g.clientID)
	form.Set("client_secret", g.clientSecret)
	form.Set("redirect_uri", g.redirectURI)
	req, err := formRequest(http.MethodPost, g.tokenEndpoint, form)
	if err != nil {
		return nil, err
	}
	return postForm(ctx, g.client, req, domain.ErrUpstream)
}

func (g *Google) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", g.clientID)
	form.Set("client_secret", g.clientSecret)
	req, err := formRequest(http.MethodPost, g.tokenEndpoint, form)
	if err != nil {
		return nil, err
	}
	return postForm(ctx, g.client, req, domain.ErrUpstreamAuth)
}
