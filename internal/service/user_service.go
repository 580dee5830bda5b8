package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskmanager/internal/access"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
)

// UserService exposes administrative user operations.
type UserService interface {
	ListUsers(ctx context.Context, p access.Principal) ([]model.User, error)
	ChangeRole(ctx context.Context, p access.Principal, targetID uint, role string) (*model.User, error)
	MakeAdmin(ctx context.Context, p access.Principal, targetID uint) (*model.User, error)
	UserTasks(ctx context.Context, p access.Principal, targetID uint) ([]model.Task, error)
}

type userService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
}

// NewUserService builds a UserService.
func NewUserService(userRepo repository.UserRepository, taskRepo repository.TaskRepository) UserService {
	return &userService{userRepo: userRepo, taskRepo: taskRepo}
}

func (s *userService) findUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, p access.Principal) ([]model.User, error) {
	if err := access.Authorize(p, access.PermListUsers); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ChangeRole sets the role of targetID. role is matched case-insensitively.
func (s *userService) ChangeRole(ctx context.Context, p access.Principal, targetID uint, role string) (*model.User, error) {
	if err := access.Authorize(p, access.PermManageRoles); err != nil {
		return nil, err
	}

	newRole, err := model.ParseRole(role)
	if err != nil {
		return nil, err
	}

	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return s.applyRole(ctx, p, target, newRole)
}

// MakeAdmin promotes targetID to ADMIN.
func (s *userService) MakeAdmin(ctx context.Context, p access.Principal, targetID uint) (*model.User, error) {
	if err := access.Authorize(p, access.PermManageRoles); err != nil {
		return nil, err
	}

	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return s.applyRole(ctx, p, target, model.RoleAdmin)
}

func (s *userService) applyRole(ctx context.Context, p access.Principal, target *model.User, role model.Role) (*model.User, error) {
	if err := access.CheckRoleChange(p, target.ID, role); err != nil {
		return nil, err
	}
	if target.Role == role {
		return target, nil
	}

	target.Role = role
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("update user %d: %w", target.ID, err)
	}
	return target, nil
}

// UserTasks lists every task assigned to targetID.
func (s *userService) UserTasks(ctx context.Context, p access.Principal, targetID uint) ([]model.Task, error) {
	if err := access.Authorize(p, access.PermListUserTasks); err != nil {
		return nil, err
	}
	if _, err := s.findUser(ctx, targetID); err != nil {
		return nil, err
	}

	tasks, _, err := s.taskRepo.List(ctx, repository.TaskFilter{AssignedToID: &targetID})
	if err != nil {
		return nil, fmt.Errorf("list tasks for user %d: %w", targetID, err)
	}
	return tasks, nil
}
