package service

import (
	"net/http"
	"testing"

	"github.com/spec-kit/referral-service/internal/domain"
	apperrors "github.com/spec-kit/referral-service/pkg/util/errorutil"
)

func TestGuardRoleChecks(t *testing.T) {
	f := newFixture(t)
	g := f.guard

	assertCode(t, g.RequireAuthenticated(domain.Anonymous()), apperrors.CodeUnauthorized, http.StatusUnauthorized)
	assertCode(t, g.RequireSuperuser(actor(f.acmeManager)), apperrors.CodeNotSuperuser, http.StatusForbidden)
	assertCode(t, g.RequireFirmMember(actor(f.customer)), apperrors.CodeNoFirm, http.StatusForbidden)
	assertCode(t, g.RequireManager(actor(f.acmeEmployee)), apperrors.CodeNotManager, http.StatusForbidden)

	for _, u := range []*domain.User{f.admin, f.acmeManager} {
		if err := g.RequireManager(actor(u)); err != nil {
			t.Fatalf("%s must pass the manager check: %v", u.Username, err)
		}
	}
	if err := g.RequireFirmMember(actor(f.acmeEmployee)); err != nil {
		t.Fatalf("employee is a firm member: %v", err)
	}
}

func TestGuardAuthorizeCompany(t *testing.T) {
	f := newFixture(t)
	g := f.guard

	if err := g.AuthorizeCompany(f.ctx, actor(f.acmeEmployee), f.acme.ID); err != nil {
		t.Fatalf("own company: %v", err)
	}
	assertCode(t, g.AuthorizeCompany(f.ctx, actor(f.acmeEmployee), f.beta.ID), apperrors.CodeCompanyMismatch, http.StatusForbidden)
	if err := g.AuthorizeCompany(f.ctx, actor(f.admin), f.beta.ID); err != nil {
		t.Fatalf("superuser bypasses ownership: %v", err)
	}

	ghost := "firm-ghost"
	orphan := f.addUser("orphan", domain.RoleFirmEmployee, &ghost)
	assertCode(t, g.AuthorizeCompany(f.ctx, actor(orphan), f.acme.ID), apperrors.CodeNoMatchingCompany, http.StatusForbidden)
}

func TestGuardResolveFirmCompany(t *testing.T) {
	f := newFixture(t)

	company, err := f.guard.ResolveFirmCompany(f.ctx, actor(f.betaManager))
	if err != nil || company.ID != f.beta.ID {
		t.Fatalf("expected beta, got %+v (%v)", company, err)
	}
	company, err = f.guard.ResolveFirmCompany(f.ctx, actor(f.admin))
	if err != nil || company != nil {
		t.Fatalf("superuser has no company scope, got %+v (%v)", company, err)
	}

	_, err = f.guard.firmCompany(f.ctx, actor(f.admin))
	assertCode(t, err, apperrors.CodeNoFirm, http.StatusForbidden)
}
