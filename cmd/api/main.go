package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/school-tests-api/api/swagger"
	"github.com/noah-isme/school-tests-api/internal/handler"
	"github.com/noah-isme/school-tests-api/internal/repository"
	"github.com/noah-isme/school-tests-api/internal/service"
	"github.com/noah-isme/school-tests-api/internal/session"
	"github.com/noah-isme/school-tests-api/internal/validation"
	"github.com/noah-isme/school-tests-api/pkg/cache"
	"github.com/noah-isme/school-tests-api/pkg/config"
	"github.com/noah-isme/school-tests-api/pkg/database"
	"github.com/noah-isme/school-tests-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title School Tests API
// @version 1.0.0
// @description Students, scheduled tests and the links between them
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if err := repository.EnsureSchema(ctx, db); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, running without cache", zap.Error(err))
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	studentRepo := repository.NewStudentRepository(db)
	testRepo := repository.NewTestRepository(db)

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cacheRepo.Enabled())
	sync := service.NewReferenceSync(studentRepo, testRepo, metrics, logr)

	authSvc := service.NewAuthService(studentRepo, session.NewSigner(cfg.Session.CookieSecret), nil, logr,
		service.AuthConfig{JWTSecret: cfg.Session.JWTSecret})
	studentSvc := service.NewStudentService(studentRepo, testRepo, sync,
		validation.NewStudentValidator(testRepo.Exists), cacheSvc, logr, cfg.Session.BcryptCost)
	testSvc := service.NewTestService(testRepo, sync,
		validation.NewTestValidator(studentRepo.Exists, time.Local), cacheSvc, logr, time.Local)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Auth:     authSvc,
		Students: studentSvc,
		Tests:    testSvc,
		Metrics:  metrics,
		DB:       db,
		Logger:   logr,
		Cookie: handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			MaxAge: cfg.Session.MaxAge,
			Secure: cfg.Session.SecureCookies,
		},
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logr.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logr.Info("server stopped gracefully")
	return nil
}
