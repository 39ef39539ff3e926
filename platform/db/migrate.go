package db

import (
	"context"
	"errors"
	"strings"

	"filmdecks_backend/platform/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies all pending migrations from the configured directory.
// An empty directory setting disables migrations.
func RunMigrations(_ context.Context, cfg config.DatabaseConfig) error {
	dir := strings.TrimSpace(cfg.GetMigrationsDir())
	if dir == "" {
		return nil
	}

	m, err := migrate.New("file://"+dir, cfg.GetDatabaseURL())
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
