package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName      string `env:"SENTRY_APP_NAME" envDefault:"sentryai"`
	AppEnv       string `env:"SENTRY_APP_ENV" envDefault:"local"`
	HTTPHost     string `env:"SENTRY_HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort     string `env:"SENTRY_HTTP_PORT" envDefault:"8080"`
	HTTPBasePath string `env:"SENTRY_HTTP_BASE_PATH" envDefault:"/api"`

	// BackendBaseURL is the externally reachable origin used to build
	// provider redirect URIs.
	BackendBaseURL string `env:"SENTRY_BACKEND_BASE_URL" envDefault:"http://localhost:8080"`

	DBHost     string `env:"SENTRY_DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"SENTRY_DB_PORT" envDefault:"5432"`
	DBUser     string `env:"SENTRY_DB_USER" envDefault:"app"`
	DBPassword string `env:"SENTRY_DB_PASSWORD" envDefault:"app_password"`
	DBName     string `env:"SENTRY_DB_NAME" envDefault:"sentrydb"`
	DBSSLMode  string `env:"SENTRY_DB_SSLMODE" envDefault:"disable"`

	JWTSecret     string        `env:"SENTRY_JWT_SECRET"`
	JWTPrivateKey string        `env:"SENTRY_JWT_PRIVATE_KEY"`
	JWTPublicKey  string        `env:"SENTRY_JWT_PUBLIC_KEY"`
	JWTAudience   string        `env:"SENTRY_JWT_AUDIENCE" envDefault:"frontend"`
	JWTIssuer     string        `env:"SENTRY_JWT_ISSUER" envDefault:"sentryai"`
	AccessTTL     time.Duration `env:"SENTRY_JWT_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"SENTRY_JWT_REFRESH_TTL" envDefault:"720h"`

	// EncryptionKey protects provider tokens at rest and the OAuth state
	// round-trip payload.
	EncryptionKey string `env:"SENTRY_ENCRYPTION_KEY"`

	SendgridAPIKey string `env:"SENTRY_SENDGRID_API_KEY"`
	SenderEmail    string `env:"SENTRY_APP_SENDER_EMAIL" envDefault:"no-reply@sentryai.app"`

	NATSURL                  string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSVerifySubject        string `env:"NATS_SUBJECT_VERIFY_JWT" envDefault:"auth.verifyJWT"`
	NATSIntegrationSubject   string `env:"NATS_SUBJECT_INTEGRATION_CONNECTED" envDefault:"integrations.connected"`
	NATSSyncCompletedSubject string `env:"NATS_SUBJECT_TASKS_SYNCED" envDefault:"integrations.tasks-synced"`

	GoogleClientID       string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCalendarScopes string `env:"GOOGLE_CALENDAR_SCOPES" envDefault:"https://www.googleapis.com/auth/calendar.readonly"`
	GoogleTasksScopes    string `env:"GOOGLE_TASKS_SCOPES" envDefault:"https://www.googleapis.com/auth/tasks"`
	GoogleRedirectPath   string `env:"GOOGLE_REDIRECT_PATH" envDefault:"/api/integrations/google/callback"`

	ZoomClientID       string `env:"ZOOM_CLIENT_ID"`
	ZoomClientSecret   string `env:"ZOOM_CLIENT_SECRET"`
	ZoomMeetingsScopes string `env:"ZOOM_MEETINGS_SCOPES" envDefault:"meeting:read"`
	ZoomRedirectPath   string `env:"ZOOM_REDIRECT_PATH" envDefault:"/api/integrations/zoom/callback"`

	AppleClientID     string `env:"APPLE_CLIENT_ID"`
	AppleClientSecret string `env:"APPLE_CLIENT_SECRET"`
	AppleRedirectPath string `env:"APPLE_REDIRECT_PATH" envDefault:"/api/auth/apple/callback"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// GoogleRedirectURI appends the service discriminator so one Google client
// registration serves the calendar and tasks flows.
func (c *Config) GoogleRedirectURI(service string) string {
	uri := c.BackendBaseURL + c.GoogleRedirectPath
	if service != "" {
		uri += "/" + service
	}
	return uri
}

func (c *Config) ZoomRedirectURI() string {
	return c.BackendBaseURL + c.ZoomRedirectPath
}

func (c *Config) AppleRedirectURI(service string) string {
	uri := c.BackendBaseURL + c.AppleRedirectPath
	if service != "" {
		uri += "/" + service
	}
	return uri
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
