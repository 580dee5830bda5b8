package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskmanager/internal/model"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &model.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	byEmail, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, model.RoleUser, byEmail.Role)

	byEmail.Role = model.RoleAdmin
	require.NoError(t, repo.Update(ctx, byEmail))

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, byID.Role)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Email: "dup@example.com", Role: model.RoleUser}))
	assert.Error(t, repo.Create(ctx, &model.User{Email: "dup@example.com", Role: model.RoleUser}))
}

func TestUserRepository_List(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		require.NoError(t, repo.Create(ctx, &model.User{Email: email, Role: model.RoleUser}))
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := NewUserRepository(gdb).FindByEmail(context.Background(), "ghost@example.com")

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List_DatabaseError(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnError(errors.New("connection lost"))

	users, err := NewUserRepository(gdb).List(context.Background())

	assert.EqualError(t, err, "connection lost")
	assert.Nil(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}
