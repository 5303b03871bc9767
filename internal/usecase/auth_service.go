package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/3oMaR9914/SentryAI/config"
	"github.com/3oMaR9914/SentryAI/internal/adapters/mailer"
	repo "github.com/3oMaR9914/SentryAI/internal/adapters/postgres"
	"github.com/3oMaR9914/SentryAI/internal/domain"
	"github.com/3oMaR9914/SentryAI/internal/providers"
	"github.com/3oMaR9914/SentryAI/internal/tokenverify"
	pkglog "github.com/3oMaR9914/SentryAI/pkg/log"
)

type AuthService interface {
	SignUp(ctx context.Context, traceID string, in SignUpInput) (*domain.User, *Tokens, error)
	SignIn(ctx context.Context, traceID, email, password string) (*domain.User, *Tokens, error)
	Refresh(ctx context.Context, traceID, refreshToken string) (*Tokens, error)
	VerifyToken(ctx context.Context, traceID, token string) (*tokenverify.Result, error)

	AppleAuthURL(service string) string
	AppleLogin(ctx context.Context, traceID, idToken string) (*Tokens, error)
	AppleSignup(ctx context.Context, traceID, code, idToken, fullName string) (*domain.User, *Tokens, error)
}

type SignUpInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Birthday  *time.Time
}

type authService struct {
	cfg           *config.Config
	logger        pkglog.Logger
	users         repo.UserRepository
	authProviders repo.AuthProviderRepository
	refresh       repo.RefreshTokenRepository
	apple         *providers.Apple
	mail          mailer.Client
	signer        JWTSigner
}

func NewAuthService(cfg *config.Config, logger pkglog.Logger, users repo.UserRepository, authProviders repo.AuthProviderRepository, refresh repo.RefreshTokenRepository, apple *providers.Apple, mail mailer.Client, signer JWTSigner) AuthService {
	return &authService{cfg: cfg, logger: logger, users: users, authProviders: authProviders, refresh: refresh, apple: apple, mail: mail, signer: signer}
}

func (s *authService) SignUp(ctx context.Context, traceID string, in SignUpInput) (*domain.User, *Tokens, error) {
	norm := normalizeEmail(in.Email)
	if err := validateEmail(norm); err != nil {
		return nil, nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, nil, err
	}
	if _, err := s.users.FindByEmail(ctx, norm); err == nil {
		return nil, nil, fmt.Errorf("%w: user already exists", domain.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	user := &domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        norm,
		PasswordHash: string(hash),
		Birthday:     in.Birthday,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}
	if s.mail != nil {
		if err := s.mail.SendVerification(ctx, norm, user.FirstName); err != nil {
			s.logger.Warn().Str("trace_id", traceID).Err(err).Msg("verification mail failed")
		}
	}
	tokens, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Uint("user_id", user.ID).Msg("signup")
	return user, tokens, nil
}

func (s *authService) SignIn(ctx context.Context, traceID, email, password string) (*domain.User, *Tokens, error) {
	norm := normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, norm)
	if err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}
	tokens, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Uint("user_id", user.ID).Msg("signin")
	return user, tokens, nil
}

func (s *authService) Refresh(ctx context.Context, traceID, refreshToken string) (*Tokens, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, domain.ErrInvalidCredentials
	}
	tok, claims, err := s.signer.Parse(refreshToken)
	if err != nil || tok == nil || !tok.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return nil, domain.ErrInvalidCredentials
	}
	jti, _ := claims["jti"].(string)
	sub, _ := claims["sub"].(string)
	if jti == "" || sub == "" {
		return nil, domain.ErrInvalidCredentials
	}
	session, err := s.refresh.FindActive(ctx, hashToken(jti))
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	userID, err := parseUserID(sub)
	if err != nil || session.UserID != userID {
		return nil, domain.ErrInvalidCredentials
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	_ = s.refresh.RevokeByHash(ctx, hashToken(jti))
	return s.issueTokens(ctx, userID)
}

func (s *authService) VerifyToken(ctx context.Context, traceID, token string) (*tokenverify.Result, error) {
	result, err := tokenverify.Verify(s.signer, token, time.Now)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", result.UserID).Msg("token verified")
	return result, nil
}

func (s *authService) AppleAuthURL(service string) string {
	return s.apple.AuthURL(service)
}

func (s *authService) AppleLogin(ctx context.Context, traceID, idToken string) (*Tokens, error) {
	identity, err := s.apple.ParseIdentity(idToken)
	if err != nil {
		return nil, err
	}
	binding, err := s.authProviders.FindByProviderEmail(ctx, domain.ProviderApple, identity.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: apple account not registered", domain.ErrNotFound)
		}
		return nil, err
	}
	tokens, err := s.issueTokens(ctx, binding.UserID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Uint("user_id", binding.UserID).Msg("apple login")
	return tokens, nil
}

func (s *authService) AppleSignup(ctx context.Context, traceID, code, idToken, fullName string) (*domain.User, *Tokens, error) {
	identity, err := s.apple.ParseIdentity(idToken)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.authProviders.FindByProviderEmail(ctx, domain.ProviderApple, identity.Email); err == nil {
		return nil, nil, fmt.Errorf("%w: apple account already registered", domain.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	first, last := splitFullName(fullName)
	user := &domain.User{FirstName: first, LastName: last, IsVerified: true}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}
	binding := &domain.AuthProvider{UserID: user.ID, Provider: domain.ProviderApple, Email: identity.Email}
	if err := s.authProviders.Create(ctx, binding); err != nil {
		return nil, nil, err
	}
	tokens, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Uint("user_id", user.ID).Msg("apple signup")
	return user, tokens, nil
}

func (s *authService) issueTokens(ctx context.Context, userID uint) (*Tokens, error) {
	subject := formatUserID(userID)
	access, err := s.signer.SignAccessToken(subject, nil, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	jti := uuid.NewString()
	refresh, err := s.signer.SignRefreshToken(subject, jti, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Create(ctx, &domain.RefreshToken{
		UserID:           userID,
		RefreshTokenHash: hashToken(jti),
		ExpiresAt:        time.Now().Add(s.cfg.RefreshTTL),
	}); err != nil {
		return nil, err
	}
	return &Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
	}, nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func validateEmail(email string) error {
	if !strings.Contains(email, "@") || len(email) > 255 {
		return fmt.Errorf("%w: invalid email", domain.ErrBadRequest)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password too short", domain.ErrBadRequest)
	}
	return nil
}

func splitFullName(fullName string) (string, string) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return "", ""
	}
	parts := strings.SplitN(fullName, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func formatUserID(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func parseUserID(sub string) (uint, error) {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func hashToken(jti string) string {
	sum := sha256.Sum256([]byte(jti))
	return hex.EncodeToString(sum[:])
}
