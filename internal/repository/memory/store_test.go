package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/repository"
)

func seedCompany(t *testing.T, s *Store, slug string) *domain.Company {
	t.Helper()
	c := &domain.Company{Name: slug, Slug: slug, LocationText: "Berlin"}
	if err := s.Companies().Create(context.Background(), c); err != nil {
		t.Fatalf("create company: %v", err)
	}
	return c
}

func seedReferral(t *testing.T, s *Store, companyID int64, serviceID *int64, created time.Time) *domain.ReferralRequest {
	t.Helper()
	r := &domain.ReferralRequest{
		CustomerName:       "Jane",
		CustomerEmail:      "jane@example.com",
		TargetCompanyID:    companyID,
		RequestedServiceID: serviceID,
		Status:             domain.ReferralStatusPending,
		CommissionAmount:   decimal.RequireFromString("75.00"),
		CreatedAt:          created,
	}
	if err := s.Referrals().Create(context.Background(), r); err != nil {
		t.Fatalf("create referral: %v", err)
	}
	return r
}

func TestTransitionIfPendingIsConditional(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := seedCompany(t, s, "acme")
	r := seedReferral(t, s, c.ID, nil, time.Now())

	now := time.Now()
	got, err := s.Referrals().TransitionIfPending(ctx, r.ID, domain.ReferralStatusAccepted, true, now)
	if err != nil {
		t.Fatalf("first transition: %v", err)
	}
	if got.Status != domain.ReferralStatusAccepted || !got.IsCommissionDue {
		t.Fatalf("unexpected record %+v", got)
	}

	_, err = s.Referrals().TransitionIfPending(ctx, r.ID, domain.ReferralStatusRejected, false, now)
	if !errors.Is(err, repository.ErrStaleStatus) {
		t.Fatalf("expected stale status, got %v", err)
	}
	stored, _ := s.Referrals().GetByID(ctx, r.ID)
	if stored.Status != domain.ReferralStatusAccepted || !stored.IsCommissionDue {
		t.Fatal("second transition must not change the record")
	}

	if _, err := s.Referrals().TransitionIfPending(ctx, 999, domain.ReferralStatusAccepted, true, now); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConcurrentTransitionsSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := seedCompany(t, s, "acme")
	r := seedReferral(t, s, c.ID, nil, time.Now())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Referrals().TransitionIfPending(ctx, r.ID, domain.ReferralStatusAccepted, true, time.Now()); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if success != 1 {
		t.Fatalf("expected exactly one winner, got %d", success)
	}
}

func TestTimeoutStaleBoundary(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := seedCompany(t, s, "acme")
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-36 * time.Hour)

	old := seedReferral(t, s, c.ID, nil, now.Add(-40*time.Hour))
	fresh := seedReferral(t, s, c.ID, nil, now.Add(-35*time.Hour))
	exact := seedReferral(t, s, c.ID, nil, cutoff)
	decided := seedReferral(t, s, c.ID, nil, now.Add(-50*time.Hour))
	if _, err := s.Referrals().TransitionIfPending(ctx, decided.ID, domain.ReferralStatusRejected, false, now); err != nil {
		t.Fatal(err)
	}

	n, err := s.Referrals().TimeoutStale(ctx, cutoff, now)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 timed out, got %d (%v)", n, err)
	}
	check := func(id int64, want domain.ReferralStatus) {
		got, _ := s.Referrals().GetByID(ctx, id)
		if got.Status != want {
			t.Errorf("request %d: got %s want %s", id, got.Status, want)
		}
	}
	check(old.ID, domain.ReferralStatusTimeout)
	check(fresh.ID, domain.ReferralStatusPending)
	check(exact.ID, domain.ReferralStatusPending)
	check(decided.ID, domain.ReferralStatusRejected)

	again, _ := s.Referrals().TimeoutStale(ctx, cutoff, now)
	if again != 0 {
		t.Fatalf("second sweep must be a no-op, got %d", again)
	}
	timedOut, _ := s.Referrals().GetByID(ctx, old.ID)
	if timedOut.IsCommissionDue || !timedOut.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected timed out record %+v", timedOut)
	}
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := seedCompany(t, s, "acme")
	svc := &domain.Service{CompanyID: c.ID, Title: "Deep clean"}
	if err := s.Services().Create(ctx, svc); err != nil {
		t.Fatal(err)
	}
	r := seedReferral(t, s, c.ID, &svc.ID, time.Now())

	if err := s.Services().Delete(ctx, svc.ID); err != nil {
		t.Fatal(err)
	}
	got, err := s.Referrals().GetByID(ctx, r.ID)
	if err != nil || got.RequestedServiceID != nil {
		t.Fatalf("service delete must clear the reference, got %+v (%v)", got, err)
	}

	if err := s.Companies().Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Referrals().GetByID(ctx, r.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("company delete must remove its referrals, got %v", err)
	}
}

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := &domain.User{Username: "alice", Email: "alice@example.com", Role: domain.RoleCustomer}
	if err := s.Users().Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	dup := &domain.User{Username: "alice", Email: "other@example.com", Role: domain.RoleCustomer}
	if err := s.Users().Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected duplicate username, got %v", err)
	}

	seedCompany(t, s, "acme")
	if err := s.Companies().Create(ctx, &domain.Company{Name: "Acme 2", Slug: "acme"}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected duplicate slug, got %v", err)
	}
}

func TestRegisterFirmLinksCompanyAndManager(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	firm := &domain.Firm{ID: "f-1", Name: "Acme", Slug: "acme", IsActive: true}
	company := &domain.Company{Name: "Acme", Slug: "acme"}
	manager := &domain.User{Username: "boss", Email: "boss@acme.test", Role: domain.RoleFirmManager}

	if err := s.Firms().Register(ctx, firm, company, manager); err != nil {
		t.Fatalf("register: %v", err)
	}
	byFirm, err := s.Companies().GetByFirmID(ctx, "f-1")
	if err != nil || byFirm.ID != company.ID {
		t.Fatalf("company not linked to firm: %+v (%v)", byFirm, err)
	}
	stored, _ := s.Users().GetByID(ctx, manager.ID)
	if stored.FirmID == nil || *stored.FirmID != "f-1" {
		t.Fatalf("manager not linked to firm: %+v", stored)
	}

	again := &domain.Firm{ID: "f-2", Name: "Acme", Slug: "acme-2"}
	if err := s.Firms().Register(ctx, again, &domain.Company{Name: "x", Slug: "x"}, &domain.User{Username: "y", Email: "y@y"}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected duplicate firm name, got %v", err)
	}
	if _, err := s.Firms().GetByID(ctx, "f-2"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("failed registration must not leave a firm behind")
	}
}

func TestSearchServices(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := seedCompany(t, s, "acme")
	cleaning := int64(1)
	for _, title := range []string{"Window cleaning", "Pipe repair"} {
		svc := &domain.Service{CompanyID: c.ID, Title: title}
		if title == "Window cleaning" {
			svc.CategoryID = &cleaning
		}
		if err := s.Services().Create(ctx, svc); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := s.Services().Search(ctx, repository.ServiceFilter{Query: "WINDOW"})
	if len(got) != 1 || got[0].Title != "Window cleaning" {
		t.Fatalf("query filter: %+v", got)
	}
	got, _ = s.Services().Search(ctx, repository.ServiceFilter{CategorySlug: "cleaning", Location: "berl"})
	if len(got) != 1 {
		t.Fatalf("category+location filter: %+v", got)
	}
	got, _ = s.Services().Search(ctx, repository.ServiceFilter{Location: "Paris"})
	if len(got) != 0 {
		t.Fatalf("location filter: %+v", got)
	}
}
