// Command sweeper runs one referral timeout sweep and exits, for use from cron or a job scheduler.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/referral-service/internal/config"
	"github.com/spec-kit/referral-service/internal/observability"
	"github.com/spec-kit/referral-service/internal/persistence"
	"github.com/spec-kit/referral-service/internal/service"
	"github.com/spec-kit/referral-service/internal/worker"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exit.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Printf("failed to init logger: %v", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect postgres", zap.Error(err))
		return 1
	}
	defer pg.Close()
	if !pg.Enabled() {
		logger.Error("POSTGRES_DSN is required for the one-shot sweeper")
		return 1
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	repos := pg.Repositories()
	referralService := service.NewReferralService(service.ReferralDependencies{
		ReferralRepo: repos.Referrals,
		CompanyRepo:  repos.Companies,
		ServiceRepo:  repos.Services,
		Logger:       logger,
		Timeout:      cfg.Referral.Timeout(),
	})

	sweeper := worker.NewTimeoutSweeper(referralService, redis, 0, cfg.Referral.SweepLockTTL(), logger)
	count, ran, err := sweeper.RunOnce(ctx)
	if err != nil {
		logger.Error("sweep failed", zap.Error(err))
		return 1
	}
	logger.Info("sweep done", zap.Bool("ran", ran), zap.Int64("timed_out", count))
	return 0
}
