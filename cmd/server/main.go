package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"boardroom/config"
	"boardroom/internal/adapters/advisor"
	"boardroom/internal/adapters/auth"
	"boardroom/internal/adapters/email"
	"boardroom/internal/broadcast"
	httpdelivery "boardroom/internal/delivery/http"
	"boardroom/internal/delivery/http/controllers"
	"boardroom/internal/delivery/http/middleware"
	"boardroom/internal/delivery/ws"
	"boardroom/internal/repository/postgres"
	"boardroom/internal/services"
)

const serviceTimeout = 5 * time.Second

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}
	logger.Info("database ready")

	channel := broadcast.NewRedisChannel(&redis.Options{Addr: cfg.RedisAddr})
	defer channel.Close()
	if err := channel.Ping(ctx); err != nil {
		return err
	}
	logger.Info("redis ready", "addr", cfg.RedisAddr)

	boardRepo := postgres.NewBoardRepository(db)
	gridRepo := postgres.NewGridRepository(db)
	itemRepo := postgres.NewItemRepository(db)

	tokens := auth.NewJWTTokens(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	mailer := email.NewMailer(email.Config{
		Provider:        cfg.MailProvider,
		FromAddress:     cfg.MailFromAddress,
		FromName:        cfg.MailFromName,
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	}, logger)
	placementAdvisor := advisor.NewHTTPAdvisor(&http.Client{Timeout: 10 * time.Second}, cfg.AdvisorURL)

	boardService := services.NewBoardService(boardRepo, gridRepo, hasher, tokens, mailer, cfg.BaseURL, cfg.SessionTTL, serviceTimeout)
	itemService := services.NewItemService(boardRepo, gridRepo, itemRepo, placementAdvisor, channel, logger, serviceTimeout)

	boardController := controllers.NewBoardController(logger, boardService)
	itemController := controllers.NewItemController(logger, itemService)
	hub := ws.NewHub(logger, channel, tokens)

	mux := httpdelivery.NewRouter(boardController, itemController, hub, tokens)
	var handler http.Handler = mux
	handler = middleware.CORS(strings.Split(cfg.CORSOrigins, ","), handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
