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

	"github.com/joho/godotenv"
	"github.com/news-api/internal/application/twofactor"
	"github.com/news-api/internal/config"
	"github.com/news-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/news-api/internal/infrastructure/jwt"
	"github.com/news-api/internal/infrastructure/memory"
	s3infra "github.com/news-api/internal/infrastructure/s3"
	"github.com/news-api/internal/infrastructure/smtp"
	"github.com/news-api/internal/infrastructure/sns"
	"github.com/news-api/internal/pkg/logger"
	transporthttp "github.com/news-api/internal/transport/http"
)

const sweepInterval = time.Minute

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.AppEnv)
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	// Creates tables that don't exist yet.
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	s3Client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		return err
	}

	mailer, err := smtp.NewCodeMailer(cfg)
	if err != nil {
		return err
	}
	texter, err := sns.NewCodeTexter(ctx, cfg)
	if err != nil {
		return err
	}

	now := time.Now
	var codes twofactor.Store
	switch cfg.TwoFactor.Store {
	case config.StoreDynamo:
		codes = dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.VerificationCodes)
	default:
		mem := memory.NewVerificationStore(now)
		go mem.RunSweeper(ctx, sweepInterval)
		codes = mem
	}
	slog.Info("verification store selected", "store", cfg.TwoFactor.Store)

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		ArticleRepo:      dynamo.NewArticleRepo(dynamoClient, cfg.DynamoTables.Articles),
		ArticleImageRepo: dynamo.NewArticleImageRepo(dynamoClient, cfg.DynamoTables.ArticleImages),
		CategoryRepo:     dynamo.NewCategoryRepo(dynamoClient, cfg.DynamoTables.Categories),
		TagRepo:          dynamo.NewTagRepo(dynamoClient, cfg.DynamoTables.Tags),
		CommentRepo:      dynamo.NewCommentRepo(dynamoClient, cfg.DynamoTables.Comments),
		ReplyRepo:        dynamo.NewReplyRepo(dynamoClient, cfg.DynamoTables.Replies),
		Codes:            codes,
		S3Store:          s3infra.NewStore(s3Client, cfg.S3BucketName),
		Mailer:           mailer,
		SMSSender:        texter,
		JWTProvider:      jwtProvider,
		Now:              now,
	}

	svcs, err := transporthttp.NewServices(cfg, deps)
	if err != nil {
		return err
	}
	if err := svcs.Users.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		slog.Warn("admin seed failed", "err", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, jwtProvider, svcs),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
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

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
