package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	nats "github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/3oMaR9914/SentryAI/config"
	httpadapter "github.com/3oMaR9914/SentryAI/internal/adapters/http"
	apiv1 "github.com/3oMaR9914/SentryAI/internal/adapters/http/api/v1"
	handlers "github.com/3oMaR9914/SentryAI/internal/adapters/http/api/v1/handlers"
	authmw "github.com/3oMaR9914/SentryAI/internal/adapters/http/middleware"
	"github.com/3oMaR9914/SentryAI/internal/adapters/mailer"
	natsadapter "github.com/3oMaR9914/SentryAI/internal/adapters/nats"
	repo "github.com/3oMaR9914/SentryAI/internal/adapters/postgres"
	"github.com/3oMaR9914/SentryAI/internal/crypt"
	"github.com/3oMaR9914/SentryAI/internal/domain"
	"github.com/3oMaR9914/SentryAI/internal/providers"
	"github.com/3oMaR9914/SentryAI/internal/usecase"
	pkglog "github.com/3oMaR9914/SentryAI/pkg/log"
)

type App struct {
	cfg      *config.Config
	logger   pkglog.Logger
	db       *gorm.DB
	natsConn *nats.Conn
	echo     *echo.Echo
}

func New(ctx context.Context) (*App, error) {
	cfg := config.MustLoad()
	logger := pkglog.New(cfg.AppEnv)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         loggerForGorm(cfg),
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.AuthProvider{},
		&domain.Integration{},
		&domain.Task{},
		&domain.RefreshToken{},
	); err != nil {
		return nil, err
	}

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		log.Printf("nats connect failed: %v", err)
	}

	cipher, err := crypt.NewCipher(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}

	users := repo.NewUserRepository(db)
	authProviders := repo.NewAuthProviderRepository(db)
	integrations := repo.NewIntegrationRepository(db)
	tasks := repo.NewTaskRepository(db)
	refreshTokens := repo.NewRefreshTokenRepository(db)

	registry := providers.Registry{
		domain.ServiceGoogleCalendar: providers.NewGoogleCalendar(cfg, cipher),
		domain.ServiceGoogleTasks:    providers.NewGoogleTasks(cfg, cipher),
		domain.ServiceZoomMeetings:   providers.NewZoomMeetings(cfg, cipher),
	}
	apple := providers.NewApple(cfg)

	var events natsadapter.EventPublisher
	if nc != nil {
		events = natsadapter.NewEventPublisher(nc, cfg.NATSIntegrationSubject, cfg.NATSSyncCompletedSubject)
	}
	var mail mailer.Client
	if cfg.SendgridAPIKey != "" {
		mail = mailer.NewHTTPClient(cfg.SendgridAPIKey, cfg.SenderEmail, 5*time.Second)
	}

	signer, err := usecase.NewJWTSigner(cfg)
	if err != nil {
		return nil, err
	}

	fetcher := usecase.NewFetcher(integrations, registry, cipher, logger)
	authService := usecase.NewAuthService(cfg, logger, users, authProviders, refreshTokens, apple, mail, signer)
	taskService := usecase.NewTaskService(logger, tasks)
	integrationService := usecase.NewIntegrationService(logger, users, integrations, registry, cipher, fetcher, events)
	syncService := usecase.NewSyncService(logger, users, tasks, fetcher, events)

	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	integrationHandler := handlers.NewIntegrationHandler(integrationService, syncService)
	authMW := authmw.NewAuthMiddleware(signer)
	router := httpadapter.NewRouter(cfg, apiv1.NewRouter(authHandler, taskHandler, integrationHandler, authMW.Handler))

	if nc != nil {
		verifyHandler := natsadapter.NewVerifyHandler(signer)
		_ = verifyHandler.Subscribe(nc, cfg.NATSVerifySubject, cfg.AppName)
	}

	e := echo.New()
	router.Setup(e)

	return &App{cfg: cfg, logger: logger, db: db, natsConn: nc, echo: e}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.echo.Shutdown(shutdownCtx)
	}()
	go func() {
		errCh <- a.echo.Start(fmt.Sprintf("%s:%s", a.cfg.HTTPHost, a.cfg.HTTPPort))
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) Close() {
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func loggerForGorm(cfg *config.Config) logger.Interface {
	level := logger.Silent
	switch cfg.AppEnv {
	case "local":
		level = logger.Info
	default:
		level = logger.Warn
	}
	return logger.Default.LogMode(level)
}
