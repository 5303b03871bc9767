package providers

import (
	"fmt"
	"net/url"

	"github.com/golang-jwt/jwt/v5"

	"github.com/3oMaR9914/SentryAI/config"
	"github.com/3oMaR9914/SentryAI/internal/domain"
)

const appleAuthEndpoint = "https://appleid.apple.com/auth/authorize"

// Apple handles Sign in with Apple. The returned id_token is self-describing,
// so no encrypted state carries identity; state holds only the flow
// discriminator (login or signup) echoed back by Apple.
type Apple struct {
	clientID     string
	redirectURI  func(service string) string
	authEndpoint string
}

// AppleIdentity is the subset of id_token claims the auth flows use.
type AppleIdentity struct {
	Subject string
	Email   string
}

func NewApple(cfg *config.Config) *Apple {
	return &Apple{
		clientID:     cfg.AppleClientID,
		redirectURI:  cfg.AppleRedirectURI,
		authEndpoint: appleAuthEndpoint,
	}
}

// AuthURL builds the authorization redirect for the login or signup flow.
func (a *Apple) AuthURL(service string) string {
	params := url.Values{}
	params.Set("client_id", a.clientID)
	params.Set("redirect_uri", a.redirectURI(service))
	params.Set("response_type", "code id_token")
	params.Set("scope", "name email")
	params.Set("response_mode", "form_post")
	params.Set("state", service)
	return a.authEndpoint + "?" + params.Encode()
}

// ParseIdentity extracts the subject and email claims from an Apple
// id_token. The signature is not verified here; the token arrives over the
// provider redirect and is only used to look up or create a binding.
func (a *Apple) ParseIdentity(idToken string) (*AppleIdentity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("%w: invalid id_token", domain.ErrBadRequest)
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: id_token missing email", domain.ErrBadRequest)
	}
	return &AppleIdentity{Subject: sub, Email: email}, nil
}
