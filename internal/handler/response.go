package handler

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"taskmanager/internal/access"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
	"taskmanager/internal/service"
)

const principalKey = "principal"

// SetPrincipal stores the authenticated caller on the request context.
func SetPrincipal(c echo.Context, p access.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the caller stored by SetPrincipal.
func PrincipalFrom(c echo.Context) (access.Principal, bool) {
	p, ok := c.Get(principalKey).(access.Principal)
	return p, ok
}

func currentPrincipal(c echo.Context) (access.Principal, error) {
	p, ok := PrincipalFrom(c)
	if !ok {
		return access.Principal{}, apperrors.ErrUnauthenticated
	}
	return p, nil
}

// respondError converts a domain error into the uniform JSON error body.
func respondError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.Code == apperrors.CodeInternal {
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func invalidRequest(c echo.Context, err error) error {
	return respondError(c, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s", apperrors.ErrValidation, name)
	}
	return uint(id), nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	return &d, nil
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID           uint               `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Status       model.TaskStatus   `json:"status"`
	Priority     model.TaskPriority `json:"priority"`
	DueDate      *string            `json:"due_date"`
	AssignedToID *uint              `json:"assigned_to_id"`
	Documents    []string           `json:"documents"`
}

func newTaskResponse(t *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		AssignedToID: t.AssignedToID,
		Documents:    t.DocumentNames(),
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(time.DateOnly)
		resp.DueDate = &d
	}
	return resp
}

func newTaskResponses(tasks []model.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, newTaskResponse(&tasks[i]))
	}
	return out
}

// TaskPageResponse is one page of tasks.
type TaskPageResponse struct {
	Content       []TaskResponse `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int64          `json:"total_elements"`
	TotalPages    int            `json:"total_pages"`
}

func newTaskPageResponse(p *service.TaskPage) TaskPageResponse {
	return TaskPageResponse{
		Content:       newTaskResponses(p.Tasks),
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.Total,
		TotalPages:    p.TotalPages,
	}
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
