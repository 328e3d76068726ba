package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/delish-app/tiffin-backend/pkg/config"
	"github.com/delish-app/tiffin-backend/pkg/migrate"
	"github.com/delish-app/tiffin-backend/pkg/migrate/migratetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsValidate(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
	require.NoError(t, migrate.ValidateEmbedded())
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	cases := map[string]string{
		"bad_name.sql":                  "-- +goose Up\n-- +goose Down\n",
		"20250301090000_no_down.sql":    "-- +goose Up\nSELECT 1;\n",
		"20250301090000_down_first.sql": "-- +goose Down\n-- +goose Up\n",
		"20251399000000_bad_month.sql":  "-- +goose Up\n-- +goose Down\n",
	}
	for name, content := range cases {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
		assert.Error(t, migrate.ValidateDir(dir), name)
	}

	dir := t.TempDir()
	for _, name := range []string{"20250301090000_a.sql", "20250301090000_b.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	}
	assert.ErrorContains(t, migrate.ValidateDir(dir), "already used")
}

func TestMigrationsApplyOnSQLite(t *testing.T) {
	conn := migratetest.NewSQLite(t)

	for _, table := range []string{"users", "restaurants", "menu_items", "orders", "order_items", "subscriptions"} {
		assert.True(t, conn.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"REFERENCES orders (id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"CHECK (payment_status IN ('pending', 'paid', 'failed'))",
		"DROP TABLE IF EXISTS order_items",
	} {
		assert.True(t, strings.Contains(content, sub), "missing expected statement %q", sub)
	}
}

func TestDialect(t *testing.T) {
	got, err := migrate.Dialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", got)

	got, err = migrate.Dialect("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", got)

	_, err = migrate.Dialect("mysql")
	require.Error(t, err)
}

func TestRunRequiresDB(t *testing.T) {
	require.Error(t, migrate.Run(context.Background(), nil, "sqlite", "", "up"))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Coupons!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_coupons.sql"))
	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "!!!")
	assert.Error(t, err)
}

func TestShouldAutoRun(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvProd}}
	assert.False(t, migrate.ShouldAutoRun(cfg))

	cfg.FeatureFlags.AutoMigrate = true
	assert.False(t, migrate.ShouldAutoRun(cfg), "prod never auto-migrates postgres")

	cfg.App.Env = config.AppEnvDev
	assert.True(t, migrate.ShouldAutoRun(cfg))

	cfg = &config.Config{App: config.AppConfig{Env: config.AppEnvProd}}
	cfg.FeatureFlags.UseSQLite = true
	assert.True(t, migrate.ShouldAutoRun(cfg))
}
