package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/limited-access-backend/pkg/config"
	"github.com/angelmondragon/limited-access-backend/pkg/db"
	"github.com/angelmondragon/limited-access-backend/pkg/db/models"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
)

// Apply brings the schema up to date for the client's driver. SQLite databases
// are shaped from the gorm models; Postgres runs the embedded goose migrations.
func Apply(ctx context.Context, client *db.Client) error {
	if client == nil {
		return fmt.Errorf("db client is required")
	}

	if client.Driver() == db.DriverSQLite {
		if err := client.DB().WithContext(ctx).AutoMigrate(&models.WaitlistEntry{}); err != nil {
			return fmt.Errorf("sqlite automigrate: %w", err)
		}
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	return UpEmbedded(ctx, sqlDB)
}

// MaybeRunDev migrates at startup when the store is SQLite or when running in
// dev with the auto-migrate flag enabled. Production Postgres is migrated by cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	sqlite := client != nil && client.Driver() == db.DriverSQLite
	if !sqlite && (!cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate) {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Driver()})
	logg.Info(ctx, "running migrations (startup auto-run)")

	if err := Apply(ctx, client); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	logg.Info(ctx, "migrations completed")
	return nil
}
