package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"irokart-be/internal/config"
	"irokart-be/internal/db"
	"irokart-be/internal/logger"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type migration struct {
	version string
	path    string
}

func main() {
	mode := flag.String("mode", "up", "migration mode: up, down or status")
	dir := flag.String("dir", "./migrations", "directory holding the *.sql migrations")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := sql.Open("postgres", cfg.ServiceDSN())
	if err != nil {
		logger.L().Fatal("failed to open db", zap.Error(err))
	}
	defer database.Close()

	if err := run(context.Background(), database, *mode, *dir); err != nil {
		logger.L().Fatal("migration failed", zap.String("mode", *mode), zap.Error(err))
	}
}

func run(ctx context.Context, database *sql.DB, mode, dir string) error {
	_, err := database.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	migrations, err := loadMigrations(dir)
	if err != nil {
		return err
	}

	switch mode {
	case "up":
		_, err := migrateUp(ctx, database, migrations)
		return err
	case "down":
		_, err := migrateDown(ctx, database, migrations)
		return err
	case "status":
		return printStatus(ctx, database, migrations)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up', 'down' or 'status')", mode)
	}
}

// loadMigrations lists dir/*.sql ordered by file name.
func loadMigrations(dir string) ([]migration, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	slices.Sort(files)

	out := make([]migration, 0, len(files))
	for _, f := range files {
		out = append(out, migration{version: filepath.Base(f), path: f})
	}
	return out, nil
}

func isApplied(ctx context.Context, q db.Queryer, version string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

// migrateUp applies every pending migration, each in its own transaction
// together with its schema_migrations row.
func migrateUp(ctx context.Context, database *sql.DB, migrations []migration) (int, error) {
	log := logger.L().With(zap.String("mode", "up"))

	applied := 0
	for _, m := range migrations {
		done, err := isApplied(ctx, database, m.version)
		if err != nil {
			return applied, err
		}
		if done {
			log.Debug("skipping applied migration", zap.String("version", m.version))
			continue
		}

		upSQL, err := readSection(m.path, "Up")
		if err != nil {
			return applied, err
		}

		log.Info("applying migration", zap.String("version", m.version))
		err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, upSQL); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("migration %s failed: %w", m.version, err)
		}
		applied++
	}

	log.Info("migrations up to date", zap.Int("applied", applied))
	return applied, nil
}

// migrateDown rolls back the most recently applied migration.
func migrateDown(ctx context.Context, database *sql.DB, migrations []migration) (string, error) {
	log := logger.L().With(zap.String("mode", "down"))

	var last string
	err := database.QueryRowContext(ctx,
		`SELECT version FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1`).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("no migrations to roll back")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last applied migration: %w", err)
	}

	idx := slices.IndexFunc(migrations, func(m migration) bool { return m.version == last })
	if idx < 0 {
		return "", fmt.Errorf("migration file not found for version: %s", last)
	}

	downSQL, err := readSection(migrations[idx].path, "Down")
	if err != nil {
		return "", err
	}

	log.Info("rolling back migration", zap.String("version", last))
	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, downSQL); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, last)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("rollback of %s failed: %w", last, err)
	}
	return last, nil
}

func printStatus(ctx context.Context, database *sql.DB, migrations []migration) error {
	for _, m := range migrations {
		done, err := isApplied(ctx, database, m.version)
		if err != nil {
			return err
		}
		state := "pending"
		if done {
			state = "applied"
		}
		fmt.Printf("%-8s %s\n", state, m.version)
	}
	return nil
}

func readSection(path, section string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	part := extractMigrationPart(string(content), section)
	if strings.TrimSpace(part) == "" {
		return "", fmt.Errorf("%s has no %q section", filepath.Base(path), section)
	}
	return part, nil
}

// extractMigrationPart returns the lines between "-- +migrate <section>" and
// the next marker.
func extractMigrationPart(content string, section string) string {
	var (
		part   strings.Builder
		inPart bool
	)
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-- +migrate") {
			if inPart {
				break
			}
			inPart = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-- +migrate")) == section
			continue
		}
		if inPart {
			part.WriteString(line + "\n")
		}
	}
	return part.String()
}
