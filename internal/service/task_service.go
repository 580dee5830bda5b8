package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"taskmanager/internal/access"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/storage"
)

const (
	// DefaultTaskTitle replaces a blank title.
	DefaultTaskTitle = "Untitled Task"

	DefaultPageSize = 20
	MaxPageSize     = 100

	maxTitleLength       = 120
	maxDescriptionLength = 1000
)

// TaskQuery selects a page of tasks visible to the caller.
type TaskQuery struct {
	Status   *model.TaskStatus
	Priority *model.TaskPriority
	Page     int
	Size     int
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks      []model.Task
	Page       int
	Size       int
	Total      int64
	TotalPages int
}

// CreateTaskInput carries the fields a caller may set on a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      *model.TaskStatus
	Priority    *model.TaskPriority
	DueDate     *time.Time
}

// UpdateTaskInput is a partial update; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *model.TaskStatus
	Priority     *model.TaskPriority
	DueDate      *time.Time
	AssignedToID *uint
}

// TaskService exposes task operations guarded per caller.
type TaskService interface {
	List(ctx context.Context, p access.Principal, q TaskQuery) (*TaskPage, error)
	Create(ctx context.Context, p access.Principal, in CreateTaskInput) (*model.Task, error)
	Get(ctx context.Context, p access.Principal, id uint) (*model.Task, error)
	Update(ctx context.Context, p access.Principal, id uint, in UpdateTaskInput) (*model.Task, error)
	Delete(ctx context.Context, p access.Principal, id uint) error
}

type taskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	files    storage.Store
	log      *slog.Logger
	now      func() time.Time
}

// NewTaskService builds a TaskService. files is used to drop the content of
// a deleted task's documents.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, files storage.Store, log *slog.Logger) TaskService {
	return &taskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		files:    files,
		log:      log,
		now:      time.Now,
	}
}

// load fetches a task and applies the access guard. A missing task is
// reported before ownership is considered.
func (s *taskService) load(ctx context.Context, p access.Principal, id uint, op access.Operation) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	if err := access.CheckTask(p, task.AssignedToID, op); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, p access.Principal, q TaskQuery) (*TaskPage, error) {
	if q.Page < 0 {
		q.Page = 0
	}
	switch {
	case q.Size <= 0:
		q.Size = DefaultPageSize
	case q.Size > MaxPageSize:
		q.Size = MaxPageSize
	}

	filter := repository.TaskFilter{
		Status:   q.Status,
		Priority: q.Priority,
		Page:     q.Page,
		Size:     q.Size,
	}
	if !p.IsAdmin() {
		filter.AssignedToID = &p.UserID
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return &TaskPage{
		Tasks:      tasks,
		Page:       q.Page,
		Size:       q.Size,
		Total:      total,
		TotalPages: int((total + int64(q.Size) - 1) / int64(q.Size)),
	}, nil
}

// Create stores a task assigned to the caller, filling defaults for
// omitted fields.
func (s *taskService) Create(ctx context.Context, p access.Principal, in CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultTaskTitle
	}

	task := &model.Task{
		Title:        title,
		Description:  in.Description,
		Status:       model.TaskStatusTodo,
		Priority:     model.TaskPriorityMedium,
		AssignedToID: &p.UserID,
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	} else {
		due := s.today().AddDate(0, 0, 1)
		task.DueDate = &due
	}

	if err := s.validate(task, in.DueDate); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (s *taskService) Get(ctx context.Context, p access.Principal, id uint) (*model.Task, error) {
	return s.load(ctx, p, id, access.OpRead)
}

func (s *taskService) Update(ctx context.Context, p access.Principal, id uint, in UpdateTaskInput) (*model.Task, error) {
	task, err := s.load(ctx, p, id, access.OpUpdate)
	if err != nil {
		return nil, err
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		task.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	if in.AssignedToID != nil {
		assignee, err := s.userRepo.FindByID(ctx, *in.AssignedToID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("assigned user: %w", apperrors.ErrNotFound)
			}
			return nil, fmt.Errorf("find assignee: %w", err)
		}
		task.AssignedToID = &assignee.ID
	}
	if strings.TrimSpace(task.Title) == "" {
		task.Title = DefaultTaskTitle
	}

	if err := s.validate(task, in.DueDate); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	return task, nil
}

// Delete removes the task and then the content of its documents. Content
// that cannot be removed is logged and left behind.
func (s *taskService) Delete(ctx context.Context, p access.Principal, id uint) error {
	task, err := s.load(ctx, p, id, access.OpDelete)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}

	for _, name := range task.DocumentNames() {
		if err := s.files.Delete(ctx, name); err != nil {
			s.log.WarnContext(ctx, "remove task document", "task_id", task.ID, "file", name, "error", err)
		}
	}
	return nil
}

func (s *taskService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// validate checks field bounds. newDue is the due date supplied by the
// caller in this request; only a freshly supplied date must not be past.
func (s *taskService) validate(task *model.Task, newDue *time.Time) error {
	if len([]rune(task.Title)) > maxTitleLength {
		return fmt.Errorf("%w: title must not exceed %d characters", apperrors.ErrValidation, maxTitleLength)
	}
	if len([]rune(task.Description)) > maxDescriptionLength {
		return fmt.Errorf("%w: description must not exceed %d characters", apperrors.ErrValidation, maxDescriptionLength)
	}
	if !task.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, task.Status)
	}
	if !task.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", apperrors.ErrValidation, task.Priority)
	}
	if newDue != nil && newDue.Before(s.today()) {
		return fmt.Errorf("%w: due date cannot be in the past", apperrors.ErrValidation)
	}
	return nil
}
