package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/events"
	apperrors "github.com/spec-kit/referral-service/pkg/util/errorutil"
)

func newFirmService(f *fixture) *FirmService {
	return NewFirmService(FirmDependencies{
		FirmRepo:   f.store.Firms(),
		Guard:      f.guard,
		Dispatcher: f.dispatcher,
		BcryptCost: testBcryptCost,
	})
}

func TestRegisterFirmLinksCompanyAndManager(t *testing.T) {
	f := newFixture(t)
	svc := newFirmService(f)
	var registered []events.Event
	f.dispatcher.Subscribe(events.EventFirmRegistered, func(_ context.Context, e events.Event) error {
		registered = append(registered, e)
		return nil
	})

	location := "Hamburg"
	reg, err := svc.RegisterFirm(f.ctx, actor(f.admin), FirmRegisterInput{
		Name:            "Gamma Movers",
		Location:        &location,
		ManagerUsername: "gamma-boss",
		ManagerEmail:    "boss@gamma.example",
		ManagerPassword: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := uuid.Parse(reg.Firm.ID); err != nil {
		t.Fatalf("firm id must be a uuid: %q", reg.Firm.ID)
	}
	if reg.Firm.Slug != "gamma-movers" || reg.Company.Slug != "gamma-movers" || reg.Company.Name != "Gamma Movers" {
		t.Fatalf("unexpected naming %+v / %+v", reg.Firm, reg.Company)
	}
	if reg.Company.FirmID == nil || *reg.Company.FirmID != reg.Firm.ID {
		t.Fatal("company must be linked to the firm")
	}
	if reg.Manager.Role != domain.RoleFirmManager || *reg.Manager.FirmID != reg.Firm.ID {
		t.Fatalf("unexpected manager %+v", reg.Manager)
	}
	if reg.Company.LocationText != "Hamburg" {
		t.Fatalf("location not copied: %q", reg.Company.LocationText)
	}
	if len(registered) != 1 {
		t.Fatalf("expected one firm registered event, got %d", len(registered))
	}

	company, err := f.guard.ResolveFirmCompany(f.ctx, actor(reg.Manager))
	if err != nil || company.ID != reg.Company.ID {
		t.Fatalf("manager must resolve the new company: %+v (%v)", company, err)
	}
}

func TestRegisterFirmFailures(t *testing.T) {
	f := newFixture(t)
	svc := newFirmService(f)
	input := FirmRegisterInput{
		Name:            "Acme",
		ManagerUsername: "someone",
		ManagerEmail:    "someone@example.com",
		ManagerPassword: "password123",
	}

	_, err := svc.RegisterFirm(f.ctx, actor(f.acmeManager), input)
	assertCode(t, err, apperrors.CodeNotSuperuser, http.StatusForbidden)

	_, err = svc.RegisterFirm(f.ctx, actor(f.admin), input)
	assertCode(t, err, apperrors.CodeConflict, http.StatusConflict)

	_, err = svc.RegisterFirm(f.ctx, actor(f.admin), FirmRegisterInput{Name: " "})
	assertCode(t, err, apperrors.CodeValidation, http.StatusBadRequest)

	dup := input
	dup.Name = "Delta"
	dup.ManagerUsername = f.acmeManager.Username
	_, err = svc.RegisterFirm(f.ctx, actor(f.admin), dup)
	assertCode(t, err, apperrors.CodeConflict, http.StatusConflict)
	if _, err := f.store.Companies().GetByID(f.ctx, f.beta.ID+1); err == nil {
		t.Fatal("failed registration must not leave a company behind")
	}
}

func TestGetFirm(t *testing.T) {
	f := newFixture(t)
	svc := newFirmService(f)

	firm, err := svc.GetFirm(f.ctx, actor(f.acmeEmployee))
	if err != nil || firm.Name != "Acme" {
		t.Fatalf("expected acme, got %+v (%v)", firm, err)
	}
	_, err = svc.GetFirm(f.ctx, actor(f.customer))
	assertCode(t, err, apperrors.CodeNoFirm, http.StatusForbidden)
	_, err = svc.GetFirm(f.ctx, domain.Anonymous())
	assertCode(t, err, apperrors.CodeUnauthorized, http.StatusUnauthorized)
}
