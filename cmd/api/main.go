package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/sunho-bae/todo-api/internal/config"
	todohttp "github.com/sunho-bae/todo-api/internal/http"
	"github.com/sunho-bae/todo-api/internal/middleware"
	"github.com/sunho-bae/todo-api/internal/repository"
	"github.com/sunho-bae/todo-api/internal/service"
	"github.com/sunho-bae/todo-api/internal/token"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	// The signing secret is process-wide state: loaded once here and
	// never logged.
	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"log_level", cfg.LogLevel,
		"rate_limit_max", cfg.RateLimit.Max,
	)

	db, err := repository.NewDB(cfg.DB.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected")

	todoRepo := repository.NewPostgresTodo(db)
	userRepo := repository.NewPostgresUser(db)

	codec := token.NewCodec([]byte(cfg.JWT.Secret))

	todoSvc := service.NewTodoService(todoRepo)
	authSvc := service.NewAuthService(userRepo, codec, cfg.JWT.TTL)

	limiter := middleware.NewRateLimit(cfg.RateLimit.Max, cfg.RateLimit.Window)
	auth := middleware.NewAuth(codec)

	srv := todohttp.NewServer(cfg.ServerPort, logger, todoSvc, authSvc, limiter, auth)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	logger.Info("server starting", "port", cfg.ServerPort)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
