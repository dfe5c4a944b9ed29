// Command bb-server starts the bdaybook HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/and161185/bdaybook/internal/config"
	"github.com/and161185/bdaybook/internal/limiter"
	"github.com/and161185/bdaybook/internal/media"
	"github.com/and161185/bdaybook/internal/migrate"
	"github.com/and161185/bdaybook/internal/repository/postgres"
	"github.com/and161185/bdaybook/internal/server/httpapi"
	"github.com/and161185/bdaybook/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, runs migrations, and starts the HTTP server.
func main() {
	cfgPath := flag.String("config", "", "optional YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (overrides config)")
	jwtKey := flag.String("jwt-key", "", "HS256 signing key (overrides config)")
	mediaDir := flag.String("media-dir", "", "photo asset directory (overrides config)")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dsn != "" {
		cfg.DSN = *dsn
	}
	if *jwtKey != "" {
		cfg.JWTKey = *jwtKey
	}
	if *mediaDir != "" {
		cfg.MediaDir = *mediaDir
	}

	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	if cfg.JWTKey == "" {
		logger.Fatal("missing jwt signing key (--jwt-key or jwt_key in config)")
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	// Media store
	assets, err := media.NewDisk(cfg.MediaDir, cfg.MaxPhotoSize)
	if err != nil {
		logger.Fatal("media store", zap.Error(err))
	}

	// Repositories
	db := &postgres.DB{Pool: pool}
	userRepo := postgres.NewUserRepo(db)
	personRepo := postgres.NewPersonRepo(db)

	lim := limiter.NewPG(pool, cfg.LoginWindow, cfg.LoginMaxFails, cfg.LoginBlockFor)

	// Services
	authSvc := service.NewAuthService(userRepo, []byte(cfg.JWTKey), cfg.AccessTTL, lim)
	personSvc := service.NewPersonService(personRepo, assets, logger, cfg.MaxPhotoSize)

	// HTTP server
	api := httpapi.New(authSvc, personSvc, assets, []byte(cfg.JWTKey), logger, cfg.MaxPhotoSize)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
