package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/3oMaR9914/SentryAI/internal/domain"
)

func TestZoomAuthURL(t *testing.T) {
	codec := testCodec(t)
	z := NewZoomMeetings(testConfig(), codec)

	raw, err := z.AuthURL(3)
	if err != nil {
		t.Fatalf("AuthURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "zoom.us" {
		t.Fatalf("host: got %q", u.Host)
	}
	q := u.Query()
	if q.Get("client_id") != "zoom-client" || q.Get("response_type") != "code" {
		t.Fatalf("unexpected params: %v", q)
	}
	if got := q.Get("redirect_uri"); got != "http://localhost:8080/api/integrations/zoom/callback" {
		t.Fatalf("redirect_uri: got %q", got)
	}
	payload, err := codec.DecodeState(url.QueryEscape(q.Get("state")))
	if err != nil {
		t.Fatalf("state does not decode: %v", err)
	}
	if payload.UserID != 3 {
		t.Fatalf("state user id: got %d want 3", payload.UserID)
	}
}

func TestZoomExchangeUsesBasicAuthAndQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "zoom-client" || pass != "zoom-secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		if q.Get("grant_type") != "authorization_code" || q.Get("code") != "zoom-code" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"zat","refresh_token":"zrt","expires_in":3600}`))
	}))
	defer srv.Close()

	z := NewZoomMeetings(testConfig(), testCodec(t))
	z.tokenEndpoint = srv.URL

	tokens, err := z.Exchange(context.Background(), "zoom-code")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if tokens.AccessToken != "zat" || tokens.RefreshToken != "zrt" {
		t.Fatalf("unexpected token set: %+v", tokens)
	}
}

func TestZoomRefreshFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	z := NewZoomMeetings(testConfig(), testCodec(t))
	z.tokenEndpoint = srv.URL

	if _, err := z.Refresh(context.Background(), "zrt"); !errors.Is(err, domain.ErrUpstreamAuth) {
		t.Fatalf("expected ErrUpstreamAuth, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("refresh must not be retried, got %d calls", calls)
	}
}
