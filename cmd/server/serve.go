package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d60-Lab/lablinker/config"
	"github.com/d60-Lab/lablinker/internal/api/handler"
	"github.com/d60-Lab/lablinker/internal/api/router"
	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/internal/service"
	"github.com/d60-Lab/lablinker/pkg/database"
	"github.com/d60-Lab/lablinker/pkg/logger"
	"github.com/d60-Lab/lablinker/pkg/mailer"
	"github.com/d60-Lab/lablinker/pkg/media"
	"github.com/d60-Lab/lablinker/pkg/token"
	"github.com/d60-Lab/lablinker/pkg/tracing"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	rdb, err := database.InitRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	resolver, err := media.New(ctx, cfg.Media)
	if err != nil {
		return err
	}
	issuer := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	accountRepo := repository.NewAccountRepository(db)
	followRepo := repository.NewFollowRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	postRepo := repository.NewPostRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	resourceRepo := repository.NewResourceRepository(db)

	profiles := cache.NewProfileCache(rdb, accountRepo, cfg.Redis.TTL)

	accountService := service.NewAccountService(accountRepo, followRepo, profiles, resolver)
	h := handler.New(handler.Services{
		Auth:      service.NewAuthService(accountRepo, otpRepo, issuer, mailer.New(cfg.Mail), cfg.OTP),
		Accounts:  accountService,
		Relations: service.NewRelationshipService(followRepo, accountRepo, profiles, resolver),
		Posts:     service.NewPostService(postRepo, categoryRepo, likeRepo, commentRepo, bookmarkRepo, profiles, resolver),
		Feed:      service.NewFeedService(postRepo, likeRepo, commentRepo, bookmarkRepo, profiles, resolver),
		Category:  service.NewCategoryService(categoryRepo),
		Bookmarks: service.NewBookmarkService(bookmarkRepo, postRepo, likeRepo, commentRepo, profiles, resolver),
		Likes:     service.NewLikeService(likeRepo, postRepo, profiles, resolver),
		Comments:  service.NewCommentService(commentRepo, postRepo, profiles, resolver),
		Resources: service.NewResourceService(resourceRepo, profiles, resolver),
	})

	gin.SetMode(cfg.Server.Mode)
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(cfg, h, issuer, accountService),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  time.Minute,
	}
	return serve(ctx, srv, cfg.Server)
}

// serve 阻塞到 ctx 结束后优雅退出
func serve(ctx context.Context, srv *http.Server, cfg config.ServerConfig) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("mode", cfg.Mode))
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

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
