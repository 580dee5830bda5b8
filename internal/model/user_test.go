package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{input: "ADMIN", want: RoleAdmin},
		{input: "admin", want: RoleAdmin},
		{input: " User ", want: RoleUser},
		{input: "user", want: RoleUser},
		{input: "superuser", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRole)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTask_IsAssignedTo(t *testing.T) {
	owner := uint(7)
	task := &Task{AssignedToID: &owner}

	assert.True(t, task.IsAssignedTo(7))
	assert.False(t, task.IsAssignedTo(8))
	assert.False(t, (&Task{}).IsAssignedTo(7))
}
