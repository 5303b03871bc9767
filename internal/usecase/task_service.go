package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	repo "github.com/3oMaR9914/SentryAI/internal/adapters/postgres"
	"github.com/3oMaR9914/SentryAI/internal/domain"
	pkglog "github.com/3oMaR9914/SentryAI/pkg/log"
)

type TaskService interface {
	Create(ctx context.Context, traceID string, userID uint, in TaskInput) (*domain.Task, error)
	ListForUser(ctx context.Context, traceID string, userID uint) ([]domain.Task, error)
	Get(ctx context.Context, traceID string, userID, taskID uint) (*domain.Task, error)
	Update(ctx context.Context, traceID string, userID, taskID uint, in TaskInput) (*domain.Task, error)
	Delete(ctx context.Context, traceID string, userID, taskID uint) error
}

type TaskInput struct {
	Title       string
	Description string
	Category    string
	Status      string
	Priority    string
	Deadline    time.Time
}

type taskService struct {
	logger pkglog.Logger
	tasks  repo.TaskRepository
}

func NewTaskService(logger pkglog.Logger, tasks repo.TaskRepository) TaskService {
	return &taskService{logger: logger, tasks: tasks}
}

func (s *taskService) Create(ctx context.Context, traceID string, userID uint, in TaskInput) (*domain.Task, error) {
	if err := validateTaskInput(in); err != nil {
		return nil, err
	}
	task := &domain.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      in.Status,
		Priority:    in.Priority,
		Deadline:    in.Deadline,
		Source:      domain.TaskSourceLocal,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Uint("user_id", userID).Uint("task_id", task.ID).Msg("task created")
	return task, nil
}

func (s *taskService) ListForUser(ctx context.Context, traceID string, userID uint) ([]domain.Task, error) {
	return s.tasks.FindByUser(ctx, userID)
}

func (s *taskService) Get(ctx context.Context, traceID string, userID, taskID uint) (*domain.Task, error) {
	return s.ownedTask(ctx, userID, taskID)
}

func (s *taskService) Update(ctx context.Context, traceID string, userID, taskID uint, in TaskInput) (*domain.Task, error) {
	if err := validateTaskInput(in); err != nil {
		return nil, err
	}
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	task.Title = in.Title
	task.Description = in.Description
	task.Category = in.Category
	task.Status = in.Status
	task.Priority = in.Priority
	task.Deadline = in.Deadline
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Uint("user_id", userID).Uint("task_id", task.ID).Msg("task updated")
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, traceID string, userID, taskID uint) error {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		return err
	}
	s.logger.Info().Str("trace_id", traceID).Uint("user_id", userID).Uint("task_id", task.ID).Msg("task deleted")
	return nil
}

func (s *taskService) ownedTask(ctx context.Context, userID, taskID uint) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", domain.ErrNotFound, taskID)
		}
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return task, nil
}

func validateTaskInput(in TaskInput) error {
	if in.Title == "" || in.Category == "" || in.Status == "" || in.Priority == "" {
		return fmt.Errorf("%w: title, category, status and priority are required", domain.ErrBadRequest)
	}
	return nil
}
