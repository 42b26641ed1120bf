// Package main はジムポータルの Web サーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yourusername/gym-portal/internal/auth"
	"github.com/yourusername/gym-portal/internal/config"
	"github.com/yourusername/gym-portal/internal/contact"
	"github.com/yourusername/gym-portal/internal/logging"
	"github.com/yourusername/gym-portal/internal/session"
	"github.com/yourusername/gym-portal/internal/storage"
	"github.com/yourusername/gym-portal/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.IsRelease())
	if err := run(cfg, logger); err != nil {
		logger.Error(context.Background(), "server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.SlogLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	db, err := storage.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer storage.Close(db)
	if err := storage.Migrate(db); err != nil {
		return err
	}

	rdb, err := setupRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := storage.NewUserStore(db)
	contacts := storage.NewContactStore(db)

	authService := auth.NewService(users)
	sessionManager := session.NewManager(session.NewStore(rdb), authService, logger, session.Options{
		MaxLifetime:  cfg.SessionMaxAge(),
		IdleTimeout:  cfg.SessionIdleTimeout(),
		SecureCookie: cfg.IsRelease(),
	})

	jobManager, err := setupJobs(cfg, contacts, logger)
	if err != nil {
		return err
	}
	jobManager.StartWorkers()
	defer func() {
		if err := jobManager.Shutdown(); err != nil {
			logger.Warn(context.Background(), "job manager shutdown failed", "error", err)
		}
	}()

	router, err := web.NewRouter(web.Deps{
		Config:       cfg,
		Logger:       logger,
		Sessions:     sessionManager,
		SessionStore: session.NewCookieStore(cfg.SessionSecret, sessionManager.CookieOptions()),
		Auth:         auth.NewHandler(authService, sessionManager, logger),
		Contacts:     contact.NewService(contacts, jobManager, logger),
		HealthChecks: healthChecks(db, rdb),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server running", "addr", "http://localhost:"+cfg.Port, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func healthChecks(db *gorm.DB, rdb *redis.Client) []web.HealthCheck {
	return []web.HealthCheck{
		{Name: "database", Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
		{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}},
	}
}
