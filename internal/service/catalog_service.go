package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/repository"
	apperrors "github.com/spec-kit/referral-service/pkg/util/errorutil"
)

// CatalogService serves the public category and service catalog and lets managers maintain
// their company's services.
type CatalogService struct {
	categories repository.CategoryRepository
	services   repository.ServiceRepository
	companies  repository.CompanyRepository
	guard      *Guard
	logger     *zap.Logger
}

// CatalogDependencies bundles collaborators for the catalog service.
type CatalogDependencies struct {
	CategoryRepo repository.CategoryRepository
	ServiceRepo  repository.ServiceRepository
	CompanyRepo  repository.CompanyRepository
	Guard        *Guard
	Logger       *zap.Logger
}

// ServiceSearch holds public search parameters.
type ServiceSearch struct {
	Query    string
	Location string
	Category string
	Limit    int
	Offset   int
}

// ServiceInput describes a service to create or replace. CompanyID is only honored for superusers.
type ServiceInput struct {
	CompanyID   int64
	CategoryID  *int64
	Title       string
	Description string
	Keywords    string
	PriceMin    decimal.NullDecimal
	PriceMax    decimal.NullDecimal
}

// ServiceView is a service with its company and category resolved.
type ServiceView struct {
	Service  *domain.Service
	Company  *domain.Company
	Category *domain.Category
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		categories: deps.CategoryRepo,
		services:   deps.ServiceRepo,
		companies:  deps.CompanyRepo,
		guard:      deps.Guard,
		logger:     logger,
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// SearchServices filters services by free text, company location and category slug.
func (s *CatalogService) SearchServices(ctx context.Context, search ServiceSearch) ([]ServiceView, error) {
	services, err := s.services.Search(ctx, repository.ServiceFilter{
		Query:        search.Query,
		Location:     search.Location,
		CategorySlug: search.Category,
		Limit:        search.Limit,
		Offset:       search.Offset,
	})
	if err != nil {
		return nil, err
	}

	companies := map[int64]*domain.Company{}
	views := make([]ServiceView, 0, len(services))
	for i := range services {
		view, err := s.resolve(ctx, &services[i], companies)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *CatalogService) GetService(ctx context.Context, id int64) (*ServiceView, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "service")
	}
	return s.resolve(ctx, svc, nil)
}

// CreateService adds a service to the manager's company.
func (s *CatalogService) CreateService(ctx context.Context, actor domain.Actor, input ServiceInput) (*ServiceView, error) {
	company, err := s.targetCompany(ctx, actor, input.CompanyID)
	if err != nil {
		return nil, err
	}
	svc := &domain.Service{CompanyID: company.ID}
	if err := s.apply(ctx, svc, input); err != nil {
		return nil, err
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, mapRepoErr(err, "company or category")
	}
	s.logger.Info("service created", zap.Int64("service_id", svc.ID), zap.Int64("company_id", company.ID))
	return s.resolve(ctx, svc, map[int64]*domain.Company{company.ID: company})
}

// UpdateService replaces the editable fields of a service owned by the caller's company.
func (s *CatalogService) UpdateService(ctx context.Context, actor domain.Actor, id int64, input ServiceInput) (*ServiceView, error) {
	svc, err := s.ownedService(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, svc, input); err != nil {
		return nil, err
	}
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, mapRepoErr(err, "service")
	}
	s.logger.Info("service updated", zap.Int64("service_id", svc.ID))
	return s.resolve(ctx, svc, nil)
}

// DeleteService removes a service; referral requests naming it keep their record without it.
func (s *CatalogService) DeleteService(ctx context.Context, actor domain.Actor, id int64) error {
	svc, err := s.ownedService(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.services.Delete(ctx, svc.ID); err != nil {
		return mapRepoErr(err, "service")
	}
	s.logger.Info("service deleted", zap.Int64("service_id", svc.ID), zap.Int64("actor_id", actor.UserID))
	return nil
}

func (s *CatalogService) ownedService(ctx context.Context, actor domain.Actor, id int64) (*domain.Service, error) {
	if err := s.guard.RequireManager(actor); err != nil {
		return nil, err
	}
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "service")
	}
	if err := s.guard.AuthorizeCompany(ctx, actor, svc.CompanyID); err != nil {
		return nil, err
	}
	return svc, nil
}

// targetCompany picks the company a new service belongs to.
func (s *CatalogService) targetCompany(ctx context.Context, actor domain.Actor, requested int64) (*domain.Company, error) {
	if err := s.guard.RequireManager(actor); err != nil {
		return nil, err
	}
	if actor.IsSuperuser() && requested > 0 {
		company, err := s.companies.GetByID(ctx, requested)
		if err != nil {
			return nil, mapRepoErr(err, "company")
		}
		return company, nil
	}
	company, err := s.guard.firmCompany(ctx, actor)
	if err != nil {
		return nil, err
	}
	if requested > 0 && requested != company.ID {
		return nil, apperrors.NewForbiddenReason(apperrors.CodeCompanyMismatch, "service must belong to your company")
	}
	return company, nil
}

func (s *CatalogService) apply(ctx context.Context, svc *domain.Service, input ServiceInput) error {
	fields := map[string]any{}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		fields["title"] = "required"
	}
	svc.Title = title
	svc.Description = strings.TrimSpace(input.Description)
	svc.Keywords = strings.TrimSpace(input.Keywords)
	svc.PriceMin = input.PriceMin
	svc.PriceMax = input.PriceMax
	svc.CategoryID = input.CategoryID
	if (svc.PriceMin.Valid && svc.PriceMin.Decimal.IsNegative()) || (svc.PriceMax.Valid && svc.PriceMax.Decimal.IsNegative()) {
		fields["price"] = "must not be negative"
	}
	if !svc.PriceRangeValid() {
		fields["price_max"] = "must not be below price_min"
	}
	if svc.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *svc.CategoryID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			fields["category_id"] = "unknown category"
		}
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("invalid service", fields)
	}
	return nil
}

func (s *CatalogService) resolve(ctx context.Context, svc *domain.Service, companies map[int64]*domain.Company) (*ServiceView, error) {
	view := &ServiceView{Service: svc}
	if c, ok := companies[svc.CompanyID]; ok {
		view.Company = c
	} else {
		company, err := s.companies.GetByID(ctx, svc.CompanyID)
		if err != nil {
			return nil, mapRepoErr(err, "company")
		}
		view.Company = company
		if companies != nil {
			companies[company.ID] = company
		}
	}
	if svc.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *svc.CategoryID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		view.Category = category
	}
	return view, nil
}
