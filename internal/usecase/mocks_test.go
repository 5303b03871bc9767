package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/3oMaR9914/SentryAI/config"
	"github.com/3oMaR9914/SentryAI/internal/crypt"
	"github.com/3oMaR9914/SentryAI/internal/domain"
	"github.com/3oMaR9914/SentryAI/internal/providers"
)

type mockUserRepo struct {
	users map[uint]*domain.User
	next  uint
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[uint]*domain.User{}}
}

func (r *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == 0 {
		r.next++
		user.ID = r.next
	}
	r.users[user.ID] = user
	return nil
}

func (r *mockUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) Update(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

type mockIntegrationRepo struct {
	integrations map[string]*domain.Integration
	next         uint
	updates      int
}

func newMockIntegrationRepo() *mockIntegrationRepo {
	return &mockIntegrationRepo{integrations: map[string]*domain.Integration{}}
}

func integrationKey(userID uint, service string) string {
	return fmt.Sprintf("%d/%s", userID, service)
}

func (r *mockIntegrationRepo) Find(_ context.Context, userID uint, service string) (*domain.Integration, error) {
	if i, ok := r.integrations[integrationKey(userID, service)]; ok {
		copied := *i
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockIntegrationRepo) Create(_ context.Context, integration *domain.Integration) error {
	key := integrationKey(integration.UserID, integration.Service)
	if _, ok := r.integrations[key]; ok {
		return domain.ErrConflict
	}
	r.next++
	integration.ID = r.next
	copied := *integration
	r.integrations[key] = &copied
	return nil
}

func (r *mockIntegrationRepo) Update(_ context.Context, integration *domain.Integration) error {
	r.updates++
	copied := *integration
	r.integrations[integrationKey(integration.UserID, integration.Service)] = &copied
	return nil
}

type mockTaskRepo struct {
	tasks   map[uint]*domain.Task
	next    uint
	creates int
	updates int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: map[uint]*domain.Task{}}
}

func (r *mockTaskRepo) Create(_ context.Context, task *domain.Task) error {
	if task.GoogleTaskID != nil {
		for _, t := range r.tasks {
			if t.UserID == task.UserID && t.GoogleTaskID != nil && *t.GoogleTaskID == *task.GoogleTaskID {
				return domain.ErrConflict
			}
		}
	}
	r.next++
	task.ID = r.next
	copied := *task
	r.tasks[task.ID] = &copied
	r.creates++
	return nil
}

func (r *mockTaskRepo) FindByID(_ context.Context, id uint) (*domain.Task, error) {
	if t, ok := r.tasks[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockTaskRepo) FindByUser(_ context.Context, userID uint) ([]domain.Task, error) {
	var out []domain.Task
	for id := uint(1); id <= r.next; id++ {
		if t, ok := r.tasks[id]; ok && t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *mockTaskRepo) FindByGoogleID(_ context.Context, userID uint, googleTaskID string) (*domain.Task, error) {
	for _, t := range r.tasks {
		if t.UserID == userID && t.GoogleTaskID != nil && *t.GoogleTaskID == googleTaskID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockTaskRepo) Update(_ context.Context, task *domain.Task) error {
	copied := *task
	r.tasks[task.ID] = &copied
	r.updates++
	return nil
}

func (r *mockTaskRepo) Delete(_ context.Context, id uint) error {
	delete(r.tasks, id)
	return nil
}

type mockAuthProviderRepo struct {
	bindings map[string]*domain.AuthProvider
	next     uint
}

func newMockAuthProviderRepo() *mockAuthProviderRepo {
	return &mockAuthProviderRepo{bindings: map[string]*domain.AuthProvider{}}
}

func (r *mockAuthProviderRepo) FindByProviderEmail(_ context.Context, provider, email string) (*domain.AuthProvider, error) {
	if b, ok := r.bindings[provider+"/"+email]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockAuthProviderRepo) Create(_ context.Context, binding *domain.AuthProvider) error {
	key := binding.Provider + "/" + binding.Email
	if _, ok := r.bindings[key]; ok {
		return domain.ErrConflict
	}
	r.next++
	binding.ID = r.next
	r.bindings[key] = binding
	return nil
}

type mockRefreshRepo struct {
	tokens map[string]*domain.RefreshToken
	next   uint
}

func newMockRefreshRepo() *mockRefreshRepo {
	return &mockRefreshRepo{tokens: map[string]*domain.RefreshToken{}}
}

func (r *mockRefreshRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	r.next++
	token.ID = r.next
	r.tokens[token.RefreshTokenHash] = token
	return nil
}

func (r *mockRefreshRepo) FindActive(_ context.Context, hash string) (*domain.RefreshToken, error) {
	if t, ok := r.tokens[hash]; ok && t.RevokedAt == nil {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockRefreshRepo) RevokeByHash(_ context.Context, hash string) error {
	delete(r.tokens, hash)
	return nil
}

// mockProvider implements providers.Provider with function fields.
type mockProvider struct {
	service   string
	exchange  func(code string) (*providers.TokenSet, error)
	refresh   func(refreshToken string) (*providers.TokenSet, error)
	authURLFn func(userID uint) (string, error)

	refreshCalls int
}

func (p *mockProvider) Service() string { return p.service }

func (p *mockProvider) AuthURL(userID uint) (string, error) {
	if p.authURLFn != nil {
		return p.authURLFn(userID)
	}
	return fmt.Sprintf("https://provider.example/authorize?user=%d", userID), nil
}

func (p *mockProvider) Exchange(_ context.Context, code string) (*providers.TokenSet, error) {
	return p.exchange(code)
}

func (p *mockProvider) Refresh(_ context.Context, refreshToken string) (*providers.TokenSet, error) {
	p.refreshCalls++
	return p.refresh(refreshToken)
}

type mockEvents struct {
	connected int
	synced    int
}

func (m *mockEvents) IntegrationConnected(_ context.Context, _ uint, _ string) error {
	m.connected++
	return nil
}

func (m *mockEvents) TasksSynced(_ context.Context, _ uint, _, _ int) error {
	m.synced++
	return nil
}

type mockMailer struct {
	sent []string
	err  error
}

func (m *mockMailer) SendVerification(_ context.Context, toEmail, _ string) error {
	m.sent = append(m.sent, toEmail)
	return m.err
}

func testCipher(t *testing.T) *crypt.Cipher {
	t.Helper()
	c, err := crypt.NewCipher("usecase-test-key")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func testConfig() *config.Config {
	return &config.Config{
		BackendBaseURL:    "http://localhost:8080",
		JWTSecret:         "unit-test-jwt-secret",
		JWTAudience:       "frontend",
		JWTIssuer:         "sentryai",
		AccessTTL:         15 * time.Minute,
		RefreshTTL:        time.Hour,
		AppleClientID:     "apple-client",
		AppleRedirectPath: "/api/auth/apple/callback",
	}
}

// seedIntegration stores an encrypted grant for the user and service.
func seedIntegration(t *testing.T, repo *mockIntegrationRepo, cipher *crypt.Cipher, userID uint, service, accessToken, refreshToken string) {
	t.Helper()
	sealed, err := cipher.Encrypt(accessToken)
	if err != nil {
		t.Fatal(err)
	}
	integration := &domain.Integration{UserID: userID, Service: service, AccessToken: sealed}
	if refreshToken != "" {
		sealedRefresh, err := cipher.Encrypt(refreshToken)
		if err != nil {
			t.Fatal(err)
		}
		integration.RefreshToken = &sealedRefresh
	}
	if err := repo.Create(context.Background(), integration); err != nil {
		t.Fatal(err)
	}
}
