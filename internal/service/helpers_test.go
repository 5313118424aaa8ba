package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/events"
	"github.com/spec-kit/referral-service/internal/repository/memory"
	apperrors "github.com/spec-kit/referral-service/pkg/util/errorutil"
)

const testBcryptCost = 4

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fixture holds two registered firms, Acme and Beta, each with one service.
type fixture struct {
	t          *testing.T
	ctx        context.Context
	store      *memory.Store
	clock      *testClock
	dispatcher events.Dispatcher
	guard      *Guard
	referrals  *ReferralService

	acme, beta       *domain.Company
	acmeSvc, betaSvc *domain.Service

	admin, acmeManager, acmeEmployee, betaManager, customer *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	store := memory.NewStore().WithClock(clock.Now)
	f := &fixture{
		t:          t,
		ctx:        context.Background(),
		store:      store,
		clock:      clock,
		dispatcher: events.NewInMemoryDispatcher(),
		guard:      NewGuard(store.Companies()),
	}
	f.referrals = NewReferralService(ReferralDependencies{
		ReferralRepo: store.Referrals(),
		CompanyRepo:  store.Companies(),
		ServiceRepo:  store.Services(),
		Guard:        f.guard,
		Dispatcher:   f.dispatcher,
		Timeout:      36 * time.Hour,
	}).WithClock(clock.Now)

	f.admin = f.addUser("root", domain.RoleAdmin, nil)
	f.customer = f.addUser("carol", domain.RoleCustomer, nil)
	f.acme, f.acmeManager = f.registerFirm("Acme", "acme-boss")
	f.beta, f.betaManager = f.registerFirm("Beta", "beta-boss")
	f.acmeEmployee = f.addUser("acme-worker", domain.RoleFirmEmployee, f.acme.FirmID)
	f.acmeSvc = f.addService(f.acme.ID, "Office cleaning")
	f.betaSvc = f.addService(f.beta.ID, "Pipe repair")
	return f
}

func (f *fixture) registerFirm(name, manager string) (*domain.Company, *domain.User) {
	f.t.Helper()
	firm := &domain.Firm{ID: "firm-" + slugify(name), Name: name, Slug: slugify(name), IsActive: true}
	company := &domain.Company{Name: name, Slug: slugify(name), LocationText: "Berlin"}
	user := &domain.User{Username: manager, Email: manager + "@example.com", Role: domain.RoleFirmManager, IsActive: true}
	if err := f.store.Firms().Register(f.ctx, firm, company, user); err != nil {
		f.t.Fatalf("register %s: %v", name, err)
	}
	return company, user
}

func (f *fixture) addUser(username string, role domain.Role, firmID *string) *domain.User {
	f.t.Helper()
	u := &domain.User{Username: username, Email: username + "@example.com", Role: role, FirmID: firmID, IsActive: true}
	if err := f.store.Users().Create(f.ctx, u); err != nil {
		f.t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (f *fixture) addService(companyID int64, title string) *domain.Service {
	f.t.Helper()
	svc := &domain.Service{CompanyID: companyID, Title: title}
	if err := f.store.Services().Create(f.ctx, svc); err != nil {
		f.t.Fatalf("create service: %v", err)
	}
	return svc
}

func (f *fixture) createReferral(company *domain.Company, svc *domain.Service) *domain.ReferralRequest {
	f.t.Helper()
	view, err := f.referrals.Create(f.ctx, ReferralCreateInput{
		TargetCompanyID:    company.ID,
		RequestedServiceID: svc.ID,
		CustomerName:       "Jane Doe",
		CustomerEmail:      "jane@example.com",
	})
	if err != nil {
		f.t.Fatalf("create referral: %v", err)
	}
	return view.Request
}

func actor(u *domain.User) domain.Actor {
	return domain.ActorFromUser(u)
}

func assertCode(t *testing.T, err error, code string, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected domain error %s, got %v", code, err)
	}
	if de.Code != code || de.HTTPStatus != status {
		t.Fatalf("expected %s/%d, got %s/%d (%s)", code, status, de.Code, de.HTTPStatus, de.Message)
	}
}
