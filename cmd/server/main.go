package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/userdeck/userdeck/internal/api"
	"github.com/userdeck/userdeck/internal/app"
	"github.com/userdeck/userdeck/internal/app/maintenance"
	iauth "github.com/userdeck/userdeck/internal/auth"
	"github.com/userdeck/userdeck/internal/database"
	"github.com/userdeck/userdeck/internal/directory"
	"github.com/userdeck/userdeck/internal/services"
	"github.com/userdeck/userdeck/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("userdeck-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	generated, err := app.ApplyRuntimeDefaults(cfg)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")
	for key := range generated {
		log.Info("generated runtime secret", zap.String("key", key))
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dir, closeStore, err := openDirectory(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	seeded, err := directory.Seed(ctx, dir)
	if err != nil {
		return fmt.Errorf("seed directory: %w", err)
	}
	if seeded > 0 {
		log.Info("seeded bootstrap accounts", zap.Int("count", seeded))
	}

	jwtService, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return fmt.Errorf("initialise jwt service: %w", err)
	}

	accountSvc, err := services.NewAccountService(dir)
	if err != nil {
		return fmt.Errorf("initialise account service: %w", err)
	}

	refresher := maintenance.NewRefresher(dir)
	if err := refresher.Start(); err != nil {
		return fmt.Errorf("start maintenance jobs: %w", err)
	}
	defer func() {
		<-refresher.Stop().Done()
	}()

	if err := refresher.RunOnce(ctx); err != nil {
		log.Warn("initial gauge refresh failed", zap.Error(err))
	}

	router, err := api.NewRouter(accountSvc, jwtService, cfg)
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

// openDirectory builds the configured directory backend. The returned close
// function releases any persistent store resources and is a no-op for the
// in-memory backend.
func openDirectory(cfg *app.Config) (directory.Directory, func(), error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if driver == "" || driver == "memory" {
		return directory.NewMemory(), func() {}, nil
	}

	db, err := database.Open(databaseConfig(cfg, driver))
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	dir, err := directory.NewGorm(db)
	if err != nil {
		return nil, nil, fmt.Errorf("initialise directory: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", driver))

	return dir, func() { closeDatabase(db, log) }, nil
}

func databaseConfig(cfg *app.Config, driver string) database.Config {
	dbCfg := database.Config{
		Driver: driver,
		Path:   strings.TrimSpace(cfg.Store.Path),
		DSN:    strings.TrimSpace(cfg.Store.DSN),
	}

	switch driver {
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Store.Postgres.Host)
		dbCfg.Port = cfg.Store.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Store.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Store.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Store.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Store.MySQL.Host)
		dbCfg.Port = cfg.Store.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Store.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Store.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Store.MySQL.Password)
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
