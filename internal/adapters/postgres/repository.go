package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/3oMaR9914/SentryAI/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type AuthProviderRepository interface {
	FindByProviderEmail(ctx context.Context, provider, email string) (*domain.AuthProvider, error)
	Create(ctx context.Context, binding *domain.AuthProvider) error
}

type IntegrationRepository interface {
	Find(ctx context.Context, userID uint, service string) (*domain.Integration, error)
	Create(ctx context.Context, integration *domain.Integration) error
	Update(ctx context.Context, integration *domain.Integration) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id uint) (*domain.Task, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.Task, error)
	FindByGoogleID(ctx context.Context, userID uint, googleTaskID string) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id uint) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	FindActive(ctx context.Context, hash string) (*domain.RefreshToken, error)
	RevokeByHash(ctx context.Context, hash string) error
}

type userRepo struct{ db *gorm.DB }

type authProviderRepo struct{ db *gorm.DB }

type integrationRepo struct{ db *gorm.DB }

type taskRepo struct{ db *gorm.DB }

type refreshTokenRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository                 { return &userRepo{db: db} }
func NewAuthProviderRepository(db *gorm.DB) AuthProviderRepository { return &authProviderRepo{db: db} }
func NewIntegrationRepository(db *gorm.DB) IntegrationRepository   { return &integrationRepo{db: db} }
func NewTaskRepository(db *gorm.DB) TaskRepository                 { return &taskRepo{db: db} }
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository { return &refreshTokenRepo{db: db} }

// translateConflict maps schema-level unique violations to the domain
// conflict error so existence-check-then-insert races still surface as 409.
func translateConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	return translateConflict(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *authProviderRepo) FindByProviderEmail(ctx context.Context, provider, email string) (*domain.AuthProvider, error) {
	var binding domain.AuthProvider
	if err := r.db.WithContext(ctx).Where("provider = ? AND email = ?", provider, email).First(&binding).Error; err != nil {
		return nil, err
	}
	return &binding, nil
}

func (r *authProviderRepo) Create(ctx context.Context, binding *domain.AuthProvider) error {
	return translateConflict(r.db.WithContext(ctx).Create(binding).Error)
}

func (r *integrationRepo) Find(ctx context.Context, userID uint, service string) (*domain.Integration, error) {
	var integration domain.Integration
	if err := r.db.WithContext(ctx).Where("user_id = ? AND service = ?", userID, service).First(&integration).Error; err != nil {
		return nil, err
	}
	return &integration, nil
}

func (r *integrationRepo) Create(ctx context.Context, integration *domain.Integration) error {
	return translateConflict(r.db.WithContext(ctx).Create(integration).Error)
}

func (r *integrationRepo) Update(ctx context.Context, integration *domain.Integration) error {
	return r.db.WithContext(ctx).Save(integration).Error
}

func (r *taskRepo) Create(ctx context.Context, task *domain.Task) error {
	return translateConflict(r.db.WithContext(ctx).Create(task).Error)
}

func (r *taskRepo) FindByID(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) FindByUser(ctx context.Context, userID uint) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepo) FindByGoogleID(ctx context.Context, userID uint, googleTaskID string) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND google_task_id = ?", userID, googleTaskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Task{}, id).Error
}

func (r *refreshTokenRepo) Create(ctx context.Context, token *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *refreshTokenRepo) FindActive(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	if err := r.db.WithContext(ctx).
		Where("refresh_token_hash = ? AND revoked_at IS NULL AND expires_at > ?", hash, time.Now()).
		First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepo) RevokeByHash(ctx context.Context, hash string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.RefreshToken{}).
		Where("refresh_token_hash = ?", hash).
		Updates(map[string]interface{}{"revoked_at": &now}).Error
}
