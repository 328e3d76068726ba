package migrate

import (
	"context"
	"fmt"

	"github.com/delish-app/tiffin-backend/pkg/config"
	"github.com/delish-app/tiffin-backend/pkg/db"
	"github.com/delish-app/tiffin-backend/pkg/logger"
)

// ShouldAutoRun reports whether a process should migrate on boot. Local
// SQLite files always are; Postgres only in dev with the flag set.
func ShouldAutoRun(cfg *config.Config) bool {
	if cfg.FeatureFlags.UseSQLite {
		return true
	}
	return cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate
}

// MaybeRunDev applies the embedded migrations when ShouldAutoRun allows it.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !ShouldAutoRun(cfg) {
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"dialect": client.Dialect()})
	if err := Up(ctx, sqlDB, client.Dialect()); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	logg.Info(ctx, "migrations applied on boot")
	return nil
}
