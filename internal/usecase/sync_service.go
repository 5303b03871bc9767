package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"gorm.io/gorm"

	natsadapter "github.com/3oMaR9914/SentryAI/internal/adapters/nats"
	repo "github.com/3oMaR9914/SentryAI/internal/adapters/postgres"
	"github.com/3oMaR9914/SentryAI/internal/domain"
	pkglog "github.com/3oMaR9914/SentryAI/pkg/log"
)

const (
	googleTasksBaseURL = "https://tasks.googleapis.com/tasks/v1"
	syncPageSize       = "250"
)

// SyncService mirrors a user's remote Google Tasks into the local task
// table. Sync is additive and update-only: tasks absent from the remote
// listing are never deleted locally, and repeated runs with no remote
// changes are no-ops.
type SyncService interface {
	SyncGoogleTasks(ctx context.Context, traceID string, userID uint) (*SyncSummary, error)
}

type SyncSummary struct {
	Lists   int `json:"lists"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type syncService struct {
	logger  pkglog.Logger
	users   repo.UserRepository
	tasks   repo.TaskRepository
	fetcher *Fetcher
	events  natsadapter.EventPublisher

	baseURL string
}

func NewSyncService(logger pkglog.Logger, users repo.UserRepository, tasks repo.TaskRepository, fetcher *Fetcher, events natsadapter.EventPublisher) SyncService {
	return &syncService{
		logger:  logger,
		users:   users,
		tasks:   tasks,
		fetcher: fetcher,
		events:  events,
		baseURL: googleTasksBaseURL,
	}
}

type googleTaskList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type googleTask struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
	Due     string `json:"due"`
	Status  string `json:"status"`
	Updated string `json:"updated"`
}

func (s *syncService) SyncGoogleTasks(ctx context.Context, traceID string, userID uint) (*SyncSummary, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return nil, err
	}

	var lists struct {
		Items []googleTaskList `json:"items"`
	}
	if err := s.fetcher.GetJSON(ctx, user.ID, domain.ServiceGoogleTasks, s.baseURL+"/users/@me/lists", nil, &lists); err != nil {
		return nil, err
	}

	summary := &SyncSummary{Lists: len(lists.Items)}
	for _, list := range lists.Items {
		if err := s.syncList(ctx, user.ID, list.ID, summary); err != nil {
			return nil, err
		}
	}

	if s.events != nil {
		_ = s.events.TasksSynced(ctx, user.ID, summary.Created, summary.Updated)
	}
	s.logger.Info().Str("trace_id", traceID).Uint("user_id", user.ID).
		Int("lists", summary.Lists).Int("created", summary.Created).Int("updated", summary.Updated).
		Msg("google tasks synced")
	return summary, nil
}

// syncList walks one task list page by page, following the provider's opaque
// continuation token until it is absent.
func (s *syncService) syncList(ctx context.Context, userID uint, listID string, summary *SyncSummary) error {
	pageToken := ""
	for {
		params := url.Values{}
		params.Set("maxResults", syncPageSize)
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page struct {
			Items         []googleTask `json:"items"`
			NextPageToken string       `json:"nextPageToken"`
		}
		endpoint := s.baseURL + "/lists/" + url.PathEscape(listID) + "/tasks"
		if err := s.fetcher.GetJSON(ctx, userID, domain.ServiceGoogleTasks, endpoint, params, &page); err != nil {
			return err
		}

		for _, remote := range page.Items {
			if err := s.upsert(ctx, userID, listID, remote, summary); err != nil {
				return err
			}
		}

		if page.NextPageToken == "" {
			return nil
		}
		pageToken = page.NextPageToken
	}
}

// upsert applies one remote task under the (google_task_id, user_id)
// idempotency key. The remote Updated marker is opaque; change detection is
// plain inequality against the stored value, never timestamp parsing.
func (s *syncService) upsert(ctx context.Context, userID uint, listID string, remote googleTask, summary *SyncSummary) error {
	if remote.ID == "" {
		return nil
	}
	existing, err := s.tasks.FindByGoogleID(ctx, userID, remote.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if existing == nil {
		task := &domain.Task{UserID: userID}
		mapRemoteTask(task, listID, remote)
		if err := s.tasks.Create(ctx, task); err != nil {
			// a concurrent run inserted the same remote task first; the
			// unique (google_task_id, user_id) index makes that a no-op
			if errors.Is(err, domain.ErrConflict) {
				return nil
			}
			return err
		}
		summary.Created++
		return nil
	}

	if existing.RemoteUpdated != nil && *existing.RemoteUpdated == remote.Updated {
		return nil
	}
	mapRemoteTask(existing, listID, remote)
	if err := s.tasks.Update(ctx, existing); err != nil {
		return err
	}
	summary.Updated++
	return nil
}

// mapRemoteTask writes every mapped field; absent optional remote fields get
// fixed defaults.
func mapRemoteTask(task *domain.Task, listID string, remote googleTask) {
	title := remote.Title
	if title == "" {
		title = "Untitled"
	}
	status := domain.TaskStatusInProgress
	if remote.Status == "completed" {
		status = domain.TaskStatusCompleted
	}
	deadline := time.Now().UTC()
	if remote.Due != "" {
		if due, err := time.Parse(time.RFC3339, remote.Due); err == nil {
			deadline = due
		}
	}

	task.Title = title
	task.Description = remote.Notes
	task.Category = "General"
	task.Status = status
	task.Priority = domain.TaskPriorityMedium
	task.Deadline = deadline
	task.Source = domain.ProviderGoogle
	task.GoogleTaskID = ptr(remote.ID)
	task.GoogleTasklistID = ptr(listID)
	task.RemoteUpdated = ptr(remote.Updated)
}

func ptr(s string) *string { return &s }
