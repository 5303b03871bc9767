package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/3oMaR9914/SentryAI/internal/domain"
	"github.com/3oMaR9914/SentryAI/internal/tokenverify"
	"github.com/3oMaR9914/SentryAI/internal/usecase"
)

// mock services with function fields, one per handler dependency.

type mockAuthService struct {
	signUp      func(in usecase.SignUpInput) (*domain.User, *usecase.Tokens, error)
	signIn      func(email, password string) (*domain.User, *usecase.Tokens, error)
	refresh     func(refreshToken string) (*usecase.Tokens, error)
	verify      func(token string) (*tokenverify.Result, error)
	appleLogin  func(idToken string) (*usecase.Tokens, error)
	appleSignup func(code, idToken, fullName string) (*domain.User, *usecase.Tokens, error)
}

func (m *mockAuthService) SignUp(_ context.Context, _ string, in usecase.SignUpInput) (*domain.User, *usecase.Tokens, error) {
	return m.signUp(in)
}

func (m *mockAuthService) SignIn(_ context.Context, _, email, password string) (*domain.User, *usecase.Tokens, error) {
	return m.signIn(email, password)
}

func (m *mockAuthService) Refresh(_ context.Context, _, refreshToken string) (*usecase.Tokens, error) {
	return m.refresh(refreshToken)
}

func (m *mockAuthService) VerifyToken(_ context.Context, _, token string) (*tokenverify.Result, error) {
	return m.verify(token)
}

func (m *mockAuthService) AppleAuthURL(service string) string {
	return "https://appleid.apple.com/auth/authorize?state=" + service
}

func (m *mockAuthService) AppleLogin(_ context.Context, _, idToken string) (*usecase.Tokens, error) {
	return m.appleLogin(idToken)
}

func (m *mockAuthService) AppleSignup(_ context.Context, _, code, idToken, fullName string) (*domain.User, *usecase.Tokens, error) {
	return m.appleSignup(code, idToken, fullName)
}

type mockIntegrationService struct {
	authURL  func(service string, userID uint) (string, error)
	callback func(service, code, state string) (*usecase.ConnectResult, error)
	events   func(userID uint) ([]map[string]any, error)
}

func (m *mockIntegrationService) AuthRedirectURL(service string, userID uint) (string, error) {
	return m.authURL(service, userID)
}

func (m *mockIntegrationService) HandleCallback(_ context.Context, _, service, code, state string) (*usecase.ConnectResult, error) {
	return m.callback(service, code, state)
}

func (m *mockIntegrationService) ListCalendarEvents(_ context.Context, _ string, userID uint) ([]map[string]any, error) {
	return m.events(userID)
}

type mockSyncService struct {
	sync func(userID uint) (*usecase.SyncSummary, error)
}

func (m *mockSyncService) SyncGoogleTasks(_ context.Context, _ string, userID uint) (*usecase.SyncSummary, error) {
	return m.sync(userID)
}

type mockTaskService struct {
	create func(userID uint, in usecase.TaskInput) (*domain.Task, error)
	list   func(userID uint) ([]domain.Task, error)
	get    func(userID, taskID uint) (*domain.Task, error)
	update func(userID, taskID uint, in usecase.TaskInput) (*domain.Task, error)
	delete func(userID, taskID uint) error
}

func (m *mockTaskService) Create(_ context.Context, _ string, userID uint, in usecase.TaskInput) (*domain.Task, error) {
	return m.create(userID, in)
}

func (m *mockTaskService) ListForUser(_ context.Context, _ string, userID uint) ([]domain.Task, error) {
	return m.list(userID)
}

func (m *mockTaskService) Get(_ context.Context, _ string, userID, taskID uint) (*domain.Task, error) {
	return m.get(userID, taskID)
}

func (m *mockTaskService) Update(_ context.Context, _ string, userID, taskID uint, in usecase.TaskInput) (*domain.Task, error) {
	return m.update(userID, taskID, in)
}

func (m *mockTaskService) Delete(_ context.Context, _ string, userID, taskID uint) error {
	return m.delete(userID, taskID)
}

// newJSONContext builds an echo context carrying a JSON body.
func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func asUser(c echo.Context, userID uint) { c.Set("user_id", userID) }
