package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
	"taskmanager/internal/service"
)

// TaskHandler serves task CRUD endpoints.
type TaskHandler struct {
	svc service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(svc service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// CreateTaskRequest represents a task creation request. Omitted fields get
// defaults: "Untitled Task", TODO, MEDIUM and a due date of tomorrow.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"max=120"`
	Description string  `json:"description" validate:"max=1000"`
	Status      string  `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateTaskRequest represents a partial task update.
type UpdateTaskRequest struct {
	Title        *string `json:"title" validate:"omitempty,max=120"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	Status       *string `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority     *string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate      *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	AssignedToID *uint   `json:"assigned_to_id"`
}

func statusPtr(s *string) *model.TaskStatus {
	if s == nil || *s == "" {
		return nil
	}
	v := model.TaskStatus(*s)
	return &v
}

func priorityPtr(s *string) *model.TaskPriority {
	if s == nil || *s == "" {
		return nil
	}
	v := model.TaskPriority(*s)
	return &v
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: invalid %s", apperrors.ErrValidation, name)
	}
	return v, nil
}

// ListTasks godoc
// @Summary List tasks
// @Description Admins see every task, users see tasks assigned to them. Filters combine.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "TODO, IN_PROGRESS or DONE"
// @Param priority query string false "LOW, MEDIUM or HIGH"
// @Param page query int false "Zero-based page"
// @Param size query int false "Page size (default 20, max 100)"
// @Success 200 {object} TaskPageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	status := c.QueryParam("status")
	priority := c.QueryParam("priority")
	q := service.TaskQuery{Status: statusPtr(&status), Priority: priorityPtr(&priority)}
	if q.Status != nil && !q.Status.Valid() {
		return respondError(c, fmt.Errorf("%w: invalid status", apperrors.ErrValidation))
	}
	if q.Priority != nil && !q.Priority.Valid() {
		return respondError(c, fmt.Errorf("%w: invalid priority", apperrors.ErrValidation))
	}
	if q.Page, err = queryInt(c, "page"); err != nil {
		return respondError(c, err)
	}
	if q.Size, err = queryInt(c, "size"); err != nil {
		return respondError(c, err)
	}

	page, err := h.svc.List(c.Request().Context(), p, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newTaskPageResponse(page))
}

// CreateTask godoc
// @Summary Create a task assigned to the caller
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task"
// @Success 201 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return invalidRequest(c, err)
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return respondError(c, err)
	}

	task, err := h.svc.Create(c.Request().Context(), p, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      statusPtr(&req.Status),
		Priority:    priorityPtr(&req.Priority),
		DueDate:     due,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newTaskResponse(task))
}

// GetTask godoc
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} TaskResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	task, err := h.svc.Get(c.Request().Context(), p, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newTaskResponse(task))
}

// UpdateTask godoc
// @Summary Update a task
// @Description Only supplied fields change. A blank title keeps the current one.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to change"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return invalidRequest(c, err)
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return respondError(c, err)
	}

	task, err := h.svc.Update(c.Request().Context(), p, id, service.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       statusPtr(req.Status),
		Priority:     priorityPtr(req.Priority),
		DueDate:      due,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newTaskResponse(task))
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.svc.Delete(c.Request().Context(), p, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
