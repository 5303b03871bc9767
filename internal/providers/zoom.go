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
	zoomAuthEndpoint  = "https://zoom.us/oauth/authorize"
	zoomTokenEndpoint = "https://zoom.us/oauth/token"
)

// Zoom authenticates token-endpoint calls with HTTP Basic auth rather than
// body credentials.
type Zoom struct {
	clientID     string
	clientSecret string
	scopes       string
	redirectURI  string
	codec        *crypt.Cipher
	client       *http.Client

	authEndpoint  string
	tokenEndpoint string
}

func NewZoomMeetings(cfg *config.Config, codec *crypt.Cipher) *Zoom {
	return &Zoom{
		clientID:      cfg.ZoomClientID,
		clientSecret:  cfg.ZoomClientSecret,
		scopes:        cfg.ZoomMeetingsScopes,
		redirectURI:   cfg.ZoomRedirectURI(),
		codec:         codec,
		client:        &http.Client{},
		authEndpoint:  zoomAuthEndpoint,
		tokenEndpoint: zoomTokenEndpoint,
	}
}

func (z *Zoom) Service() string { return domain.ServiceZoomMeetings }

func (z *Zoom) AuthURL(userID uint) (string, error) {
	state, err := z.codec.EncodeState(userID)
	if err != nil {
		return "", err
	}
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", z.clientID)
	params.Set("redirect_uri", z.redirectURI)
	params.Set("scope", z.scopes)
	return z.authEndpoint + "?" + params.Encode() + "&state=" + state, nil
}

func (z *Zoom) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", z.redirectURI)
	return z.tokenPost(ctx, params, domain.ErrUpstream)
}

func (z *Zoom) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	params := url.Values{}
	params.Set("grant_type", "refresh_token")
	params.Set("refresh_token", refreshToken)
	return z.tokenPost(ctx, params, domain.ErrUpstreamAuth)
}

// tokenPost sends the grant parameters in the query string, as Zoom's token
// endpoint expects, with client credentials in the Basic auth header.
func (z *Zoom) tokenPost(ctx context.Context, params url.Values, failErr error) (*TokenSet, error) {
	req, err := http.NewRequest(http.MethodPost, z.tokenEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(z.clientID, z.clientSecret)
	return postForm(ctx, z.client, req, failErr)
}
