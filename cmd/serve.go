package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go_vocab_builder/internal/config"
	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/repository"
	"go_vocab_builder/internal/routes"
	"go_vocab_builder/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

// openDB は設定の database.url に接続します。呼び出し側で closeDB すること
func openDB(logger *slog.Logger) (*gorm.DB, error) {
	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Error("Error closing database connection", slog.Any("error", err))
	} else {
		slog.Info("Database connection closed.")
	}
}

// newSessionRepository は redis.addr があれば Redis、なければステートレスのストアを返します
func newSessionRepository(ctx context.Context, logger *slog.Logger) (repository.SessionRepository, func(), error) {
	if config.Cfg.Redis.Addr == "" {
		logger.Info("Redis not configured, using stateless sessions")
		return repository.NewStatelessSessionRepository(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Cfg.Redis.Addr,
		Password: config.Cfg.Redis.Password,
		DB:       config.Cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", config.Cfg.Redis.Addr, err)
	}
	logger.Info("Redis session store connected", slog.String("addr", config.Cfg.Redis.Addr))
	return repository.NewRedisSessionRepository(client), func() { client.Close() }, nil
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.Default()
	logger.Info("Application starting...", slog.String("version", config.AppVersion))

	db, err := openDB(logger)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if config.Cfg.Database.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			return err
		}
		logger.Info("Database schema migrated")
	}

	sessions, closeSessions, err := newSessionRepository(ctx, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	var metrics *middleware.Metrics
	if config.Cfg.Metrics.Enabled {
		metrics = middleware.NewMetrics()
	}

	router, err := routes.NewRouter(routes.Dependencies{
		DB:       db,
		Config:   &config.Cfg,
		Logger:   logger,
		Sessions: sessions,
		Mailer:   service.NewMailer(&config.Cfg, logger),
		Metrics:  metrics,
	})
	if err != nil {
		return err
	}

	server := newHTTPServer(config.Cfg.Server.Port, router)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("could not listen on %s: %w", config.Cfg.Server.Port, err)
	case <-quit:
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.Any("error", err))
	}
	logger.Info("Server exiting")
	return nil
}

// newHTTPServer は chi の Timeout が 504 を書き終えられるよう WriteTimeout に余裕を持たせる
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: routes.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
