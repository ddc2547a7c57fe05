package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndubrovin/TaskKeeper/internal/models"
	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when a task id does not exist for the
// requesting user. Another user's task looks exactly like a missing one.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository defines the persistence operations needed by the
// TaskService.
type TaskRepository interface {
	// TasksByUser retrieves all tasks belonging to the specified user.
	TasksByUser(ctx context.Context, userID string) ([]models.Task, error)
	// TaskByID fetches a single task scoped to the user.
	TaskByID(ctx context.Context, userID, id string) (*models.Task, error)
	// InsertTask stores a new task.
	InsertTask(ctx context.Context, task models.Task) error
	// UpdateTask overwrites an existing task's mutable fields.
	UpdateTask(ctx context.Context, task models.Task) error
	// DeleteTask removes the task, reporting whether a row existed.
	DeleteTask(ctx context.Context, userID, id string) (bool, error)
}

// TaskInput carries the fields required to create a task.
type TaskInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     string          `json:"dueDate"`
	Priority    models.Priority `json:"priority"`
	Category    string          `json:"category"`
}

// TaskPatch is a partial update; nil fields keep their stored value.
type TaskPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	DueDate     *string          `json:"dueDate"`
	Priority    *models.Priority `json:"priority"`
	Category    *string          `json:"category"`
	Completed   *bool            `json:"completed"`
}

// TaskService implements task CRUD scoped to the authenticated user.
type TaskService struct {
	repo TaskRepository
}

// NewTaskService constructs a TaskService with the provided repository.
func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// List returns all of the user's tasks.
func (s *TaskService) List(ctx context.Context, userID string) ([]models.Task, error) {
	return s.repo.TasksByUser(ctx, userID)
}

// Get returns one task or ErrTaskNotFound.
func (s *TaskService) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	task, err := s.repo.TaskByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("fetch task: %w", err)
	}
	return task, nil
}

// Create validates the input, assigns an id, and stores the task. New
// tasks always start not completed.
func (s *TaskService) Create(ctx context.Context, userID string, in TaskInput) (*models.Task, error) {
	if in.Title == "" || in.Description == "" || in.DueDate == "" || in.Category == "" {
		return nil, fmt.Errorf("%w: title, description, dueDate, priority, and category are required", ErrInvalidInput)
	}
	if !in.Priority.Valid() {
		return nil, fmt.Errorf("%w: priority must be low, medium, or high", ErrInvalidInput)
	}

	task := models.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Category:    in.Category,
		Completed:   false,
		UserID:      userID,
	}
	if err := s.repo.InsertTask(ctx, task); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &task, nil
}

// Update loads the task, applies the non-nil patch fields, and stores
// the result. The id is immutable; patches cannot touch it.
func (s *TaskService) Update(ctx context.Context, userID, id string, patch TaskPatch) (*models.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, fmt.Errorf("%w: priority must be low, medium, or high", ErrInvalidInput)
		}
		task.Priority = *patch.Priority
	}
	if patch.Category != nil {
		task.Category = *patch.Category
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}

	if err := s.repo.UpdateTask(ctx, *task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes the task or returns ErrTaskNotFound.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.repo.DeleteTask(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}
