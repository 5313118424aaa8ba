package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/referral-service/internal/api/http"
	"github.com/spec-kit/referral-service/internal/api/http/handlers"
	"github.com/spec-kit/referral-service/internal/auth"
	"github.com/spec-kit/referral-service/internal/config"
	"github.com/spec-kit/referral-service/internal/events"
	"github.com/spec-kit/referral-service/internal/observability"
	"github.com/spec-kit/referral-service/internal/persistence"
	"github.com/spec-kit/referral-service/internal/service"
	"github.com/spec-kit/referral-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	repos := pg.Repositories()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	guard := service.NewGuard(repos.Companies)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:     repos.Users,
		TokenManager: tokens,
		Logger:       logger,
	})
	if _, err := authService.EnsureSuperuser(ctx, cfg.Auth.BootstrapAdminUsername, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword); err != nil {
		logger.Fatal("failed to bootstrap superuser", zap.Error(err))
	}

	referralService := service.NewReferralService(service.ReferralDependencies{
		ReferralRepo:     repos.Referrals,
		CompanyRepo:      repos.Companies,
		ServiceRepo:      repos.Services,
		Guard:            guard,
		Dispatcher:       dispatcher,
		Metrics:          metrics,
		Logger:           logger,
		CommissionAmount: cfg.Referral.CommissionAmount,
		Timeout:          cfg.Referral.Timeout(),
	})
	firmService := service.NewFirmService(service.FirmDependencies{
		FirmRepo:   repos.Firms,
		Guard:      guard,
		Dispatcher: dispatcher,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	companyService := service.NewCompanyService(service.CompanyDependencies{
		CompanyRepo: repos.Companies,
		Guard:       guard,
		Logger:      logger,
	})
	employeeService := service.NewEmployeeService(service.EmployeeDependencies{
		UserRepo:   repos.Users,
		Guard:      guard,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		CategoryRepo: repos.Categories,
		ServiceRepo:  repos.Services,
		CompanyRepo:  repos.Companies,
		Guard:        guard,
		Logger:       logger,
	})

	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))

	sweeper := worker.NewTimeoutSweeper(referralService, redis, cfg.Referral.SweepInterval(), cfg.Referral.SweepLockTTL(), logger)
	go sweeper.Start(ctx)

	checks := map[string]handlers.Pinger{"redis": redis}
	if pg.Enabled() {
		checks["postgres"] = pg
	}

	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		Auth:           handlers.NewAuthHandler(authService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		Referrals:      handlers.NewReferralsHandler(referralService),
		Firm:           handlers.NewFirmHandler(firmService, companyService),
		Employees:      handlers.NewEmployeesHandler(employeeService),
		Admin:          handlers.NewAdminHandler(firmService, referralService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, repos.Users),
		Metrics:        metrics,
		RateLimit:      cfg.RateLimit,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
