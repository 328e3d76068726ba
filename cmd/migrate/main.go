package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/delish-app/tiffin-backend/internal/seed"
	"github.com/delish-app/tiffin-backend/pkg/config"
	"github.com/delish-app/tiffin-backend/pkg/db"
	"github.com/delish-app/tiffin-backend/pkg/logger"
	"github.com/delish-app/tiffin-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

var (
	cmdFlag     = flag.String("cmd", "up", "up|down|status|version|create|validate|seed")
	dirFlag     = flag.String("dir", "", "migrations directory; empty uses the embedded set")
	nameFlag    = flag.String("name", "", "migration name for -cmd=create")
	versionFlag = flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
)

// offline commands work on files only and never open a connection.
var offline = map[string]func() (string, error){
	"create": func() (string, error) {
		if *nameFlag == "" {
			return "", errors.New("missing -name")
		}
		dir := *dirFlag
		if dir == "" {
			dir = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(dir, *nameFlag)
		return "created " + path, err
	},
	"validate": func() (string, error) {
		if *dirFlag == "" {
			return "embedded migrations valid", migrate.ValidateEmbedded()
		}
		return *dirFlag + " valid", migrate.ValidateDir(*dirFlag)
	},
}

type session struct {
	cfg     *config.Config
	logg    *logger.Logger
	client  *db.Client
	sqlDB   *sql.DB
	dialect string
}

var online = map[string]func(ctx context.Context, s session) error{
	"up":     goose("up"),
	"down":   goose("down"),
	"status": goose("status"),
	"version": func(ctx context.Context, s session) error {
		if *versionFlag == "" {
			return errors.New("missing -version")
		}
		return migrate.MigrateToVersion(ctx, s.sqlDB, s.dialect, *dirFlag, *versionFlag)
	},
	"seed": func(ctx context.Context, s session) error {
		if s.cfg.App.IsProd() {
			return errors.New("refusing to seed demo data in production")
		}
		return seed.Run(ctx, s.client.DB(), s.cfg.Password, s.logg)
	},
}

func goose(command string) func(context.Context, session) error {
	return func(ctx context.Context, s session) error {
		return migrate.Run(ctx, s.sqlDB, s.dialect, *dirFlag, command)
	}
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", *cmdFlag, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if fn, ok := offline[*cmdFlag]; ok {
		msg, err := fn()
		if err == nil {
			fmt.Println(msg)
		}
		return err
	}
	fn, ok := online[*cmdFlag]
	if !ok {
		return fmt.Errorf("unknown command %q", *cmdFlag)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": *cmdFlag})

	client, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}

	if err := fn(ctx, session{cfg: cfg, logg: logg, client: client, sqlDB: sqlDB, dialect: client.Dialect()}); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		return err
	}
	logg.Info(ctx, "migrate.done")
	return nil
}
