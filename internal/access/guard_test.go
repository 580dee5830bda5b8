package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskmanager/internal/model"
)

func uintPtr(v uint) *uint { return &v }

var taskOps = []Operation{OpRead, OpUpdate, OpDelete, OpUpload, OpDownload}

func TestCheckTask_UserOnOwnTask(t *testing.T) {
	p := Principal{UserID: 1, Role: model.RoleUser}

	for _, op := range taskOps {
		assert.NoError(t, CheckTask(p, uintPtr(1), op), op)
	}
}

func TestCheckTask_UserOnForeignTask(t *testing.T) {
	p := Principal{UserID: 1, Role: model.RoleUser}

	for _, owner := range []*uint{uintPtr(2), nil} {
		for _, op := range taskOps {
			assert.ErrorIs(t, CheckTask(p, owner, op), ErrForbidden, op)
		}
	}
}

func TestCheckTask_AdminAllowedRegardlessOfOwnership(t *testing.T) {
	p := Principal{UserID: 1, Role: model.RoleAdmin}

	for _, owner := range []*uint{uintPtr(1), uintPtr(2), nil} {
		for _, op := range taskOps {
			assert.NoError(t, CheckTask(p, owner, op), op)
		}
	}
}

func TestCheckTask_UnknownRoleDenied(t *testing.T) {
	p := Principal{UserID: 1, Role: model.Role("GUEST")}
	assert.ErrorIs(t, CheckTask(p, uintPtr(1), OpRead), ErrForbidden)
}

func TestAuthorize(t *testing.T) {
	admin := Principal{UserID: 1, Role: model.RoleAdmin}
	user := Principal{UserID: 2, Role: model.RoleUser}

	for _, perm := range []Permission{PermListUsers, PermManageRoles, PermListUserTasks} {
		assert.NoError(t, Authorize(admin, perm), perm)
		assert.ErrorIs(t, Authorize(user, perm), ErrForbidden, perm)
	}

	assert.ErrorIs(t, Authorize(admin, Permission("delete-everything")), ErrForbidden)
}

func TestCheckRoleChange(t *testing.T) {
	admin := Principal{UserID: 1, Role: model.RoleAdmin}
	user := Principal{UserID: 2, Role: model.RoleUser}

	tests := []struct {
		name     string
		caller   Principal
		targetID uint
		newRole  model.Role
		wantErr  error
	}{
		{name: "admin promotes other", caller: admin, targetID: 2, newRole: model.RoleAdmin},
		{name: "admin demotes other", caller: admin, targetID: 2, newRole: model.RoleUser},
		{name: "admin demotes self", caller: admin, targetID: 1, newRole: model.RoleUser, wantErr: ErrSelfDemotion},
		{name: "admin re-affirms self", caller: admin, targetID: 1, newRole: model.RoleAdmin},
		{name: "user promotes self", caller: user, targetID: 2, newRole: model.RoleAdmin, wantErr: ErrForbidden},
		{name: "user changes other", caller: user, targetID: 1, newRole: model.RoleUser, wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRoleChange(tt.caller, tt.targetID, tt.newRole)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
