package service

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "github.com/spec-kit/referral-service/pkg/util/errorutil"
)

func newCatalogService(f *fixture) *CatalogService {
	return NewCatalogService(CatalogDependencies{
		CategoryRepo: f.store.Categories(),
		ServiceRepo:  f.store.Services(),
		CompanyRepo:  f.store.Companies(),
		Guard:        f.guard,
	})
}

func TestCatalogPublicReads(t *testing.T) {
	f := newFixture(t)
	svc := newCatalogService(f)

	categories, err := svc.ListCategories(f.ctx)
	if err != nil || len(categories) != 6 {
		t.Fatalf("expected seeded categories, got %d (%v)", len(categories), err)
	}

	results, err := svc.SearchServices(f.ctx, ServiceSearch{Query: "pipe"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Service.ID != f.betaSvc.ID || results[0].Company.ID != f.beta.ID {
		t.Fatalf("unexpected search result %+v", results)
	}

	view, err := svc.GetService(f.ctx, f.acmeSvc.ID)
	if err != nil || view.Company.Name != "Acme" {
		t.Fatalf("get: %+v (%v)", view, err)
	}
	_, err = svc.GetService(f.ctx, 9999)
	assertCode(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestCreateServiceTargetsOwnCompany(t *testing.T) {
	f := newFixture(t)
	svc := newCatalogService(f)
	cleaning := int64(1)

	view, err := svc.CreateService(f.ctx, actor(f.acmeManager), ServiceInput{
		CategoryID: &cleaning,
		Title:      "Window cleaning",
		PriceMin:   decimal.NewNullDecimal(decimal.NewFromInt(20)),
		PriceMax:   decimal.NewNullDecimal(decimal.NewFromInt(80)),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Service.CompanyID != f.acme.ID || view.Category == nil || view.Category.Name != "Cleaning" {
		t.Fatalf("unexpected view %+v", view)
	}

	_, err = svc.CreateService(f.ctx, actor(f.acmeManager), ServiceInput{CompanyID: f.beta.ID, Title: "Sneaky"})
	assertCode(t, err, apperrors.CodeCompanyMismatch, http.StatusForbidden)

	adminView, err := svc.CreateService(f.ctx, actor(f.admin), ServiceInput{CompanyID: f.beta.ID, Title: "Drain survey"})
	if err != nil || adminView.Service.CompanyID != f.beta.ID {
		t.Fatalf("superuser may target any company: %+v (%v)", adminView, err)
	}

	_, err = svc.CreateService(f.ctx, actor(f.acmeEmployee), ServiceInput{Title: "Nope"})
	assertCode(t, err, apperrors.CodeNotManager, http.StatusForbidden)
}

func TestServiceInputValidation(t *testing.T) {
	f := newFixture(t)
	svc := newCatalogService(f)
	unknown := int64(999)

	cases := map[string]ServiceInput{
		"missing title":    {Title: " "},
		"inverted range":   {Title: "x", PriceMin: decimal.NewNullDecimal(decimal.NewFromInt(50)), PriceMax: decimal.NewNullDecimal(decimal.NewFromInt(10))},
		"negative price":   {Title: "x", PriceMin: decimal.NewNullDecimal(decimal.NewFromInt(-5))},
		"unknown category": {Title: "x", CategoryID: &unknown},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateService(f.ctx, actor(f.acmeManager), input)
			assertCode(t, err, apperrors.CodeValidation, http.StatusBadRequest)
		})
	}
}

func TestUpdateAndDeleteServiceOwnership(t *testing.T) {
	f := newFixture(t)
	svc := newCatalogService(f)

	_, err := svc.UpdateService(f.ctx, actor(f.acmeManager), f.betaSvc.ID, ServiceInput{Title: "Hijacked"})
	assertCode(t, err, apperrors.CodeCompanyMismatch, http.StatusForbidden)

	view, err := svc.UpdateService(f.ctx, actor(f.betaManager), f.betaSvc.ID, ServiceInput{Title: "Emergency pipe repair", Keywords: "leak"})
	if err != nil || view.Service.Title != "Emergency pipe repair" {
		t.Fatalf("update: %+v (%v)", view, err)
	}

	err = svc.DeleteService(f.ctx, actor(f.acmeManager), f.betaSvc.ID)
	assertCode(t, err, apperrors.CodeCompanyMismatch, http.StatusForbidden)

	req := f.createReferral(f.beta, f.betaSvc)
	if err := svc.DeleteService(f.ctx, actor(f.betaManager), f.betaSvc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	stored, err := f.store.Referrals().GetByID(f.ctx, req.ID)
	if err != nil || stored.RequestedServiceID != nil {
		t.Fatalf("referral must survive without its service: %+v (%v)", stored, err)
	}
}
