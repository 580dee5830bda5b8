package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskmanager/internal/model"
	"taskmanager/internal/service"
)

// UserHandler serves the admin user endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// RoleChangeResponse confirms a role update.
type RoleChangeResponse struct {
	Message string     `json:"message"`
	UserID  uint       `json:"user_id"`
	NewRole model.Role `json:"new_role"`
}

// ListUsers godoc
// @Summary List users (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}

	users, err := h.svc.ListUsers(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err)
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, newUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateRole godoc
// @Summary Change a user's role (admin only)
// @Description Allowed roles: ADMIN, USER (case-insensitive). Admins cannot demote themselves.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param role query string true "New role"
// @Success 200 {object} RoleChangeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/role [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.svc.ChangeRole(c.Request().Context(), p, id, c.QueryParam("role"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, RoleChangeResponse{
		Message: "user role updated successfully",
		UserID:  user.ID,
		NewRole: user.Role,
	})
}

// UserTasks godoc
// @Summary Tasks assigned to a user (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} TaskResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/tasks [get]
func (h *UserHandler) UserTasks(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	tasks, err := h.svc.UserTasks(c.Request().Context(), p, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newTaskResponses(tasks))
}
