package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskmanager/internal/access"
	"taskmanager/internal/db"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/storage"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Issue(ctx context.Context, userID uint, email string) (string, error) {
	args := m.Called(ctx, userID, email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenStore) Lookup(ctx context.Context, token string) (uint, string, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uint), args.String(1), args.Error(2)
}

func (m *MockTokenStore) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "service.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture bundles real repositories over a fresh database.
type fixture struct {
	db       *gorm.DB
	users    repository.UserRepository
	tasks    repository.TaskRepository
	store    *storage.Disk
	storeDir string
}

func newFixture(t *testing.T) *fixture {
	gdb := newTestDB(t)
	dir := t.TempDir()
	store, err := storage.NewDisk(dir)
	require.NoError(t, err)
	return &fixture{
		db:       gdb,
		users:    repository.NewUserRepository(gdb),
		tasks:    repository.NewTaskRepository(gdb),
		store:    store,
		storeDir: dir,
	}
}

func (f *fixture) principal(t *testing.T, email string, role model.Role) access.Principal {
	t.Helper()
	user := &model.User{Email: email, Role: role}
	require.NoError(t, f.users.Create(context.Background(), user))
	return access.Principal{UserID: user.ID, Email: user.Email, Role: role}
}

func (f *fixture) task(t *testing.T, owner access.Principal, title string) *model.Task {
	t.Helper()
	due := time.Now().AddDate(0, 0, 3)
	task := &model.Task{
		Title:        title,
		Status:       model.TaskStatusTodo,
		Priority:     model.TaskPriorityMedium,
		DueDate:      &due,
		AssignedToID: &owner.UserID,
	}
	require.NoError(t, f.tasks.Create(context.Background(), task))
	return task
}
