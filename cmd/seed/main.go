package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gorm.io/gorm"

	"taskmanager/internal/config"
	"taskmanager/internal/db"
	"taskmanager/internal/logging"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
)

// AdminSeed describes the account the seed script guarantees exists.
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel)

	seed := AdminSeed{}
	flag.StringVar(&seed.Email, "email", os.Getenv("ADMIN_EMAIL"), "admin email (ADMIN_EMAIL)")
	flag.StringVar(&seed.Password, "password", os.Getenv("ADMIN_PASSWORD"), "admin password, only used when the account is created (ADMIN_PASSWORD)")
	flag.StringVar(&seed.Name, "name", os.Getenv("ADMIN_NAME"), "admin display name (ADMIN_NAME)")
	flag.Parse()

	logger.Info("starting seed script")

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(gormDB)
	created, promoted, err := seedAdmin(context.Background(), userRepo, seed)
	if err != nil {
		logger.Error("failed to seed admin", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seed completed",
		slog.String("email", strings.ToLower(strings.TrimSpace(seed.Email))),
		slog.Bool("created", created),
		slog.Bool("promoted", promoted),
	)
}

// seedAdmin creates the admin account, or promotes an existing account with
// the same email. Existing passwords are never overwritten.
func seedAdmin(ctx context.Context, repo repository.UserRepository, seed AdminSeed) (created bool, promoted bool, err error) {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" {
		return false, false, errors.New("admin email is required")
	}

	existing, err := repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, false, fmt.Errorf("error checking user %s: %w", email, err)
	}

	if existing != nil {
		if existing.Role == model.RoleAdmin {
			return false, false, nil
		}
		existing.Role = model.RoleAdmin
		if err := repo.Update(ctx, existing); err != nil {
			return false, false, fmt.Errorf("error promoting user %s: %w", email, err)
		}
		return false, true, nil
	}

	if len(seed.Password) < 6 {
		return false, false, errors.New("admin password must be at least 6 characters")
	}
	hashed, err := service.HashPassword(seed.Password)
	if err != nil {
		return false, false, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Name:         seed.Name,
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
	}
	if err := repo.Create(ctx, user); err != nil {
		return false, false, fmt.Errorf("error creating user %s: %w", email, err)
	}
	return true, false, nil
}
