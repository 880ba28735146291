package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"os"
	"strings"

	"irokart-be/internal/config"
	"irokart-be/internal/logger"
	"irokart-be/internal/user"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultAdminName = "IroKart Admin"

type adminInput struct {
	email    string
	password string
	name     string
}

func main() {
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email (ADMIN_EMAIL)")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (ADMIN_PASSWORD)")
	name := flag.String("name", envOr("ADMIN_NAME", defaultAdminName), "admin full name (ADMIN_NAME)")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := sql.Open("postgres", cfg.ServiceDSN())
	if err != nil {
		logger.L().Fatal("failed to open db", zap.Error(err))
	}
	defer database.Close()

	in := adminInput{email: *email, password: *password, name: *name}
	id, created, err := run(context.Background(), user.NewRepository(database), in)
	if err != nil {
		logger.L().Fatal("seed admin failed", zap.String("email", in.email), zap.Error(err))
	}
	logger.L().Info("admin ready", zap.String("user_id", id), zap.Bool("created", created))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// run creates the admin account, or when the email is already registered
// resets its password and rewrites its profile as an active admin.
func run(ctx context.Context, repo user.Repository, in adminInput) (string, bool, error) {
	email := strings.ToLower(strings.TrimSpace(in.email))
	if email == "" || in.password == "" {
		return "", false, user.ErrEmailPasswordRequired
	}
	name := strings.TrimSpace(in.name)
	if name == "" {
		name = defaultAdminName
	}

	hash, err := user.HashPassword(in.password)
	if err != nil {
		return "", false, err
	}

	profile := &user.Profile{
		FullName:        &name,
		Email:           &email,
		UserType:        user.TypeAdmin,
		AccountStatus:   user.StatusActive,
		IsEmailVerified: true,
	}

	cred, err := repo.FindCredentialByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		cred = &user.Credential{Email: email, PasswordHash: hash}
		if err := repo.CreateWithProfile(ctx, cred, profile); err != nil {
			return "", false, err
		}
		return cred.ID, true, nil
	case err != nil:
		return "", false, err
	}

	if err := repo.UpdatePassword(ctx, cred.ID, hash); err != nil {
		return "", false, err
	}
	profile.ID = cred.ID
	if err := repo.UpsertProfile(ctx, profile); err != nil {
		return "", false, err
	}
	return cred.ID, false, nil
}
