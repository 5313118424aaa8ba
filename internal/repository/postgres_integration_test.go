package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/persistence"
	"github.com/spec-kit/referral-service/internal/repository"
)

// openTestPool connects to REFERRAL_TEST_PG_DSN or boots a postgres:16 container.
// The test is skipped when neither is available.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	ctx := context.Background()

	dsn := os.Getenv("REFERRAL_TEST_PG_DSN")
	if dsn == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		container, err := postgres.Run(ctx,
			"postgres:16",
			postgres.WithDatabase("referrals"),
			postgres.WithUsername("referrals"),
			postgres.WithPassword("referrals"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			t.Skipf("postgres container unavailable: %v", err)
		}
		t.Cleanup(func() { _ = container.Terminate(context.Background()) })

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("connection string: %v", err)
		}
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := persistence.RunMigrations(ctx, pool, filepath.Join("..", "..", "migrations"), zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func TestPostgresReferralLifecycle(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	firms := repository.NewFirmRepository(pool)
	services := repository.NewServiceRepository(pool)
	referrals := repository.NewReferralRepository(pool)
	companies := repository.NewCompanyRepository(pool)

	suffix := uuid.NewString()[:8]
	firm := &domain.Firm{ID: uuid.NewString(), Name: "Acme " + suffix, Slug: "acme-" + suffix, IsActive: true}
	company := &domain.Company{Name: "Acme " + suffix, Slug: "acme-" + suffix, LocationText: "Berlin"}
	manager := &domain.User{Username: "boss-" + suffix, Email: suffix + "@acme.test", PasswordHash: "x", Role: domain.RoleFirmManager, IsActive: true}
	if err := firms.Register(ctx, firm, company, manager); err != nil {
		t.Fatalf("register firm: %v", err)
	}

	byFirm, err := companies.GetByFirmID(ctx, firm.ID)
	if err != nil || byFirm.ID != company.ID {
		t.Fatalf("company by firm: %+v (%v)", byFirm, err)
	}

	svc := &domain.Service{CompanyID: company.ID, Title: "Deep clean", PriceMin: decimal.NewNullDecimal(decimal.RequireFromString("10.50"))}
	if err := services.Create(ctx, svc); err != nil {
		t.Fatalf("create service: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	old := &domain.ReferralRequest{
		CustomerName: "Jane", CustomerEmail: "jane@example.com",
		TargetCompanyID: company.ID, RequestedServiceID: &svc.ID,
		Status: domain.ReferralStatusPending, CommissionAmount: domain.DefaultCommissionAmount,
		CreatedAt: now.Add(-40 * time.Hour),
	}
	fresh := &domain.ReferralRequest{
		CustomerName: "Joe", CustomerEmail: "joe@example.com",
		TargetCompanyID: company.ID,
		Status:          domain.ReferralStatusPending, CommissionAmount: domain.DefaultCommissionAmount,
		CreatedAt: now.Add(-time.Hour),
	}
	for _, r := range []*domain.ReferralRequest{old, fresh} {
		if err := referrals.Create(ctx, r); err != nil {
			t.Fatalf("create referral: %v", err)
		}
	}

	stored, err := referrals.GetByID(ctx, old.ID)
	if err != nil {
		t.Fatalf("get referral: %v", err)
	}
	if !stored.CommissionAmount.Equal(decimal.RequireFromString("75")) {
		t.Fatalf("commission round trip: %s", stored.CommissionAmount)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := referrals.TransitionIfPending(ctx, fresh.ID, domain.ReferralStatusAccepted, true, time.Now())
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else if !errors.Is(err, repository.ErrStaleStatus) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected one winning transition, got %d", wins)
	}

	n, err := referrals.TimeoutStale(ctx, now.Add(-36*time.Hour), now)
	if err != nil {
		t.Fatalf("timeout stale: %v", err)
	}
	if n < 1 {
		t.Fatalf("expected the 40h request to time out, got %d", n)
	}
	timedOut, _ := referrals.GetByID(ctx, old.ID)
	if timedOut.Status != domain.ReferralStatusTimeout || timedOut.IsCommissionDue {
		t.Fatalf("unexpected timed out record %+v", timedOut)
	}

	if err := services.Delete(ctx, svc.ID); err != nil {
		t.Fatalf("delete service: %v", err)
	}
	cleared, _ := referrals.GetByID(ctx, old.ID)
	if cleared.RequestedServiceID != nil {
		t.Fatal("service delete must clear requested_service_id")
	}

	if err := companies.Delete(ctx, company.ID); err != nil {
		t.Fatalf("delete company: %v", err)
	}
	if _, err := referrals.GetByID(ctx, old.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected cascade delete, got %v", err)
	}
}

func TestPostgresDuplicateUser(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)

	name := "dup-" + uuid.NewString()[:8]
	u := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Role: domain.RoleCustomer, IsActive: true}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	again := &domain.User{Username: name, Email: "other-" + name + "@example.com", PasswordHash: "x", Role: domain.RoleCustomer}
	if err := users.Create(ctx, again); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}
