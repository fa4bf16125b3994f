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

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/counseling-api/api/swagger"
	"github.com/noah-isme/counseling-api/internal/repository"
	"github.com/noah-isme/counseling-api/internal/service"
	"github.com/noah-isme/counseling-api/pkg/cache"
	"github.com/noah-isme/counseling-api/pkg/config"
	"github.com/noah-isme/counseling-api/pkg/database"
	"github.com/noah-isme/counseling-api/pkg/jobs"
	"github.com/noah-isme/counseling-api/pkg/logger"
)

// @title Counseling API
// @version 1.0.0
// @description Counseling session scheduling for students, counselors and administrators
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	metrics := service.NewMetricsService()
	metrics.RegisterDBStats(db.DB, cfg.Database.Name)

	var cacheRepo service.CacheRepository
	if cfg.Reports.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("report cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			cacheRepo = repository.NewCacheRepository(client, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr, cacheRepo != nil)

	validate := validator.New()
	ids := repository.NewIdentifierAllocator()

	accounts := repository.NewAccountRepository(db, ids)
	sessions := repository.NewSessionRepository(db, ids)
	students := repository.NewStudentRepository(db)
	counselors := repository.NewCounselorRepository(db)
	admins := repository.NewAdminRepository(db)
	topics := repository.NewTopicRepository(db, ids)

	audit := service.NewAuditService(repository.NewAuditRepository(db), jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		Logger:     logr,
	}, logr)

	services := routeServices{
		auth: service.NewAuthService(accounts, audit, validate, logr, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
			BcryptCost:        cfg.JWT.BcryptCost,
		}),
		sessions: service.NewSessionService(sessions, counselors, topics, admins, audit, cacheSvc, metrics, validate, logr, service.SessionConfig{
			StatusMode:       cfg.Sessions.StatusMode,
			AdminAttribution: cfg.Sessions.AdminAttribution,
			Location:         cfg.Location(),
		}),
		students:   service.NewStudentService(students, audit, validate, logr),
		counselors: service.NewCounselorService(counselors, topics, audit, validate, logr),
		admins:     service.NewAdminService(admins, audit, validate, logr),
		topics:     service.NewTopicService(topics, audit, validate, logr),
		reports:    service.NewReportService(repository.NewReportRepository(db), cacheSvc, metrics, validate, logr),
		audit:      audit,
		metrics:    metrics,
		db:         db,
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: newRouter(cfg, logr, services),
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	audit.Start(workerCtx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logr.Info("shutting down")
		err := srv.Shutdown(shutdownCtx)
		audit.Stop()
		return err
	})

	return g.Wait()
}
