package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"gorm.io/gorm"

	natsadapter "github.com/3oMaR9914/SentryAI/internal/adapters/nats"
	repo "github.com/3oMaR9914/SentryAI/internal/adapters/postgres"
	"github.com/3oMaR9914/SentryAI/internal/crypt"
	"github.com/3oMaR9914/SentryAI/internal/domain"
	"github.com/3oMaR9914/SentryAI/internal/providers"
	pkglog "github.com/3oMaR9914/SentryAI/pkg/log"
)

const (
	calendarEventsEndpoint = "https://www.googleapis.com/calendar/v3/calendars/primary/events"
	googleUserInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"
	zoomUserEndpoint       = "https://api.zoom.us/v2/users/me"
)

// profile endpoints per service, read through the freshly stored grant
var defaultProfileEndpoints = map[string]string{
	domain.ServiceGoogleCalendar: googleUserInfoEndpoint,
	domain.ServiceGoogleTasks:    googleUserInfoEndpoint,
	domain.ServiceZoomMeetings:   zoomUserEndpoint,
}

type IntegrationService interface {
	// AuthRedirectURL builds the provider authorization redirect for the
	// connect flow of the given service.
	AuthRedirectURL(service string, userID uint) (string, error)

	// HandleCallback completes a connect flow: decode state, resolve the
	// user, reject duplicates, exchange the code and persist the grant.
	HandleCallback(ctx context.Context, traceID, service, code, state string) (*ConnectResult, error)

	// ListCalendarEvents lists upcoming primary-calendar events through
	// the authenticated fetcher.
	ListCalendarEvents(ctx context.Context, traceID string, userID uint) ([]map[string]any, error)
}

type ConnectResult struct {
	UserID    uint           `json:"user_id"`
	Service   string         `json:"service"`
	ExpiresIn int64          `json:"expires_in"`
	Profile   map[string]any `json:"profile,omitempty"`
}

type integrationService struct {
	logger       pkglog.Logger
	users        repo.UserRepository
	integrations repo.IntegrationRepository
	registry     providers.Registry
	cipher       *crypt.Cipher
	fetcher      *Fetcher
	events       natsadapter.EventPublisher

	eventsEndpoint   string
	profileEndpoints map[string]string
}

func NewIntegrationService(logger pkglog.Logger, users repo.UserRepository, integrations repo.IntegrationRepository, registry providers.Registry, cipher *crypt.Cipher, fetcher *Fetcher, events natsadapter.EventPublisher) IntegrationService {
	return &integrationService{
		logger:           logger,
		users:            users,
		integrations:     integrations,
		registry:         registry,
		cipher:           cipher,
		fetcher:          fetcher,
		events:           events,
		eventsEndpoint:   calendarEventsEndpoint,
		profileEndpoints: defaultProfileEndpoints,
	}
}

func (s *integrationService) AuthRedirectURL(service string, userID uint) (string, error) {
	provider, err := s.registry.Lookup(service)
	if err != nil {
		return "", err
	}
	return provider.AuthURL(userID)
}

func (s *integrationService) HandleCallback(ctx context.Context, traceID, service, code, state string) (*ConnectResult, error) {
	if code == "" || state == "" {
		return nil, fmt.Errorf("%w: missing code or state", domain.ErrBadRequest)
	}
	payload, err := s.cipher.DecodeState(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	user, err := s.users.FindByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return nil, err
	}

	if _, err := s.integrations.Find(ctx, user.ID, service); err == nil {
		return nil, fmt.Errorf("%w: user already connected before", domain.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	provider, err := s.registry.Lookup(service)
	if err != nil {
		return nil, err
	}
	tokens, err := provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	integration := &domain.Integration{UserID: user.ID, Service: service}
	if err := applyTokenSet(s.cipher, integration, tokens); err != nil {
		return nil, err
	}
	// the unique (user_id, service) index backs the existence check above
	if err := s.integrations.Create(ctx, integration); err != nil {
		return nil, err
	}

	if s.events != nil {
		_ = s.events.IntegrationConnected(ctx, user.ID, service)
	}
	s.logger.Info().Str("trace_id", traceID).Uint("user_id", user.ID).Str("service", service).Msg("integration connected")

	expiresIn := tokens.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	result := &ConnectResult{UserID: user.ID, Service: service, ExpiresIn: expiresIn}

	// enrich the success body with the provider's user profile; the grant is
	// already stored, so a profile failure must not fail the connect
	if endpoint := s.profileEndpoints[service]; endpoint != "" {
		var profile map[string]any
		if err := s.fetcher.GetJSON(ctx, user.ID, service, endpoint, nil, &profile); err != nil {
			s.logger.Warn().Str("trace_id", traceID).Str("service", service).Err(err).Msg("provider profile fetch failed")
		} else {
			result.Profile = profile
		}
	}
	return result, nil
}

func (s *integrationService) ListCalendarEvents(ctx context.Context, traceID string, userID uint) ([]map[string]any, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return nil, err
	}
	params := url.Values{}
	params.Set("maxResults", "10")
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")

	var out struct {
		Items []map[string]any `json:"items"`
	}
	if err := s.fetcher.GetJSON(ctx, userID, domain.ServiceGoogleCalendar, s.eventsEndpoint, params, &out); err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Uint("user_id", userID).Int("events", len(out.Items)).Msg("calendar events listed")
	return out.Items, nil
}
