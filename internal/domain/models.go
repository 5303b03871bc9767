package domain

import "time"

// Service discriminators for provider integrations.
const (
	ServiceGoogleCalendar = "google_calendar"
	ServiceGoogleTasks    = "google_tasks"
	ServiceZoomMeetings   = "zoom_meetings"
)

// Federated login providers.
const (
	ProviderApple  = "apple"
	ProviderGoogle = "google"
)

// Task status values.
const (
	TaskStatusInProgress = "In progress"
	TaskStatusCompleted  = "Completed"
	TaskStatusFailed     = "failed"
)

// Task priority values.
const (
	TaskPriorityLow    = "Low"
	TaskPriorityMedium = "Medium"
	TaskPriorityHigh   = "High"
)

// TaskSourceLocal tags tasks created through the API rather than synced
// from a provider.
const TaskSourceLocal = "sentry"

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	FirstName    string     `gorm:"type:text;not null" json:"first_name"`
	LastName     string     `gorm:"type:text;not null" json:"last_name"`
	Email        string     `gorm:"type:text;index" json:"email"`
	PasswordHash string     `gorm:"type:text" json:"-"`
	Birthday     *time.Time `json:"birthday"`
	IsVerified   bool       `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// AuthProvider binds a user to a federated login identity. At most one
// binding may exist per (provider, email).
type AuthProvider struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Provider  string    `gorm:"type:text;not null;uniqueIndex:idx_provider_email" json:"provider"`
	Email     string    `gorm:"type:text;not null;uniqueIndex:idx_provider_email" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AuthProvider) TableName() string { return "auth_providers" }

// Integration is one OAuth grant for one external service. Tokens are
// stored encrypted; the (user_id, service) pair is unique so a second
// connect attempt surfaces a conflict instead of overwriting the grant.
type Integration struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_user_service" json:"user_id"`
	Service      string    `gorm:"type:text;not null;uniqueIndex:idx_user_service" json:"service"`
	AccessToken  string    `gorm:"type:text;not null" json:"-"`
	RefreshToken *string   `gorm:"type:text" json:"-"`
	Expiry       time.Time `gorm:"not null" json:"expiry"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Integration) TableName() string { return "integrations" }

// Task is a unit of work, user-created or mirrored from a provider.
// Provider-sourced rows are keyed by (google_task_id, user_id);
// RemoteUpdated holds the provider's opaque last-modified marker and is
// compared by inequality only.
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null;uniqueIndex:idx_google_task_user" json:"user_id"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:text;not null" json:"category"`
	Status      string    `gorm:"type:text;not null" json:"status"`
	Priority    string    `gorm:"type:text;not null" json:"priority"`
	Deadline    time.Time `gorm:"not null" json:"deadline"`
	Source      string    `gorm:"type:text;not null" json:"source"`

	GoogleTaskID     *string `gorm:"type:text;uniqueIndex:idx_google_task_user" json:"google_task_id"`
	GoogleTasklistID *string `gorm:"type:text" json:"google_tasklist_id"`
	RemoteUpdated    *string `gorm:"type:text" json:"remote_updated"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// RefreshToken is a persisted refresh session for the service's own JWTs.
type RefreshToken struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"index;not null" json:"user_id"`
	RefreshTokenHash string     `gorm:"type:text;not null" json:"-"`
	ExpiresAt        time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt        *time.Time `json:"revoked_at"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }
