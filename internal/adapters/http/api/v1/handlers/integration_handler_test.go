package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/3oMaR9914/SentryAI/internal/domain"
	"github.com/3oMaR9914/SentryAI/internal/usecase"
)

func TestConnectGoogleTasksRedirects(t *testing.T) {
	h := NewIntegrationHandler(&mockIntegrationService{
		authURL: func(service string, userID uint) (string, error) {
			if service != domain.ServiceGoogleTasks || userID != 7 {
				t.Fatalf("unexpected args: %s %d", service, userID)
			}
			return "https://accounts.google.com/o/oauth2/v2/auth?state=x", nil
		},
	}, nil)

	c, rec := newJSONContext(t, http.MethodGet, "/integrations/google/tasks/connect", "")
	asUser(c, 7)
	if err := h.ConnectGoogleTasks(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://accounts.google.com/o/oauth2/v2/auth?state=x" {
		t.Fatalf("location: %s", loc)
	}
}

func TestConnectRequiresAuth(t *testing.T) {
	h := NewIntegrationHandler(&mockIntegrationService{}, nil)

	c, rec := newJSONContext(t, http.MethodGet, "/integrations/zoom/connect", "")
	if err := h.ConnectZoom(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestGoogleCallbackRoutesService(t *testing.T) {
	var gotService string
	h := NewIntegrationHandler(&mockIntegrationService{
		callback: func(service, code, state string) (*usecase.ConnectResult, error) {
			gotService = service
			return &usecase.ConnectResult{UserID: 1, Service: service, ExpiresIn: 3600}, nil
		},
	}, nil)

	c, rec := newJSONContext(t, http.MethodGet, "/integrations/google/calendar/callback?code=abc&state=xyz", "")
	c.SetParamNames("service")
	c.SetParamValues("calendar")
	if err := h.GoogleCallback(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if gotService != domain.ServiceGoogleCalendar {
		t.Fatalf("service: got %q", gotService)
	}
}

func TestGoogleCallbackUnknownService(t *testing.T) {
	h := NewIntegrationHandler(&mockIntegrationService{}, nil)

	c, rec := newJSONContext(t, http.MethodGet, "/integrations/google/drive/callback", "")
	c.SetParamNames("service")
	c.SetParamValues("drive")
	if err := h.GoogleCallback(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestCallbackErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: missing code or state", domain.ErrBadRequest), http.StatusBadRequest},
		{fmt.Errorf("%w: user not found", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: user already connected before", domain.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: exchange failed", domain.ErrUpstream), http.StatusBadGateway},
	}
	for _, tc := range cases {
		h := NewIntegrationHandler(&mockIntegrationService{
			callback: func(string, string, string) (*usecase.ConnectResult, error) { return nil, tc.err },
		}, nil)
		c, rec := newJSONContext(t, http.MethodGet, "/integrations/zoom/callback?code=a&state=b", "")
		if err := h.ZoomCallback(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != tc.want {
			t.Fatalf("%v: status got %d want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestSyncGoogleTasksHandler(t *testing.T) {
	h := NewIntegrationHandler(&mockIntegrationService{}, &mockSyncService{
		sync: func(userID uint) (*usecase.SyncSummary, error) {
			if userID != 3 {
				t.Fatalf("user id: got %d", userID)
			}
			return &usecase.SyncSummary{Lists: 2, Created: 5, Updated: 1}, nil
		},
	})

	c, rec := newJSONContext(t, http.MethodPost, "/integrations/google/tasks/3/sync", "")
	c.SetParamNames("user_id")
	c.SetParamValues("3")
	if err := h.SyncGoogleTasks(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var body struct {
		Summary usecase.SyncSummary `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Summary.Created != 5 || body.Summary.Updated != 1 {
		t.Fatalf("summary: %+v", body.Summary)
	}
}

func TestSyncGoogleTasksBadUserID(t *testing.T) {
	h := NewIntegrationHandler(&mockIntegrationService{}, &mockSyncService{})

	c, rec := newJSONContext(t, http.MethodPost, "/integrations/google/tasks/abc/sync", "")
	c.SetParamNames("user_id")
	c.SetParamValues("abc")
	if err := h.SyncGoogleTasks(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestCalendarEventsNotConnected(t *testing.T) {
	h := NewIntegrationHandler(&mockIntegrationService{
		events: func(uint) ([]map[string]any, error) {
			return nil, fmt.Errorf("%w: google_calendar", domain.ErrNotConnected)
		},
	}, nil)

	c, rec := newJSONContext(t, http.MethodGet, "/integrations/google/calendar/1/events", "")
	c.SetParamNames("user_id")
	c.SetParamValues("1")
	if err := h.CalendarEvents(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", rec.Code)
	}
}
