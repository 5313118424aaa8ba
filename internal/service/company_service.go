package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/repository"
	apperrors "github.com/spec-kit/referral-service/pkg/util/errorutil"
)

// CompanyService reads and edits the storefront of the caller's firm.
type CompanyService struct {
	companies repository.CompanyRepository
	guard     *Guard
	logger    *zap.Logger
}

// CompanyDependencies bundles collaborators for the company service.
type CompanyDependencies struct {
	CompanyRepo repository.CompanyRepository
	Guard       *Guard
	Logger      *zap.Logger
}

// CompanyPatch lists the editable fields. Nil leaves a field unchanged; an empty string clears
// an optional text field.
type CompanyPatch struct {
	Name                     *string
	Description              *string
	LocationText             *string
	Phone                    *string
	Email                    *string
	TaxNumber                *string
	MinOrderAmount           *decimal.Decimal
	DefaultDeliveryFee       *decimal.Decimal
	EstimatedDeliveryMinutes *int
}

// NewCompanyService constructs the service.
func NewCompanyService(deps CompanyDependencies) *CompanyService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{companies: deps.CompanyRepo, guard: deps.Guard, logger: logger}
}

// GetOwnCompany returns the company linked to the caller's firm.
func (s *CompanyService) GetOwnCompany(ctx context.Context, actor domain.Actor) (*domain.Company, error) {
	return s.guard.firmCompany(ctx, actor)
}

// UpdateOwnCompany applies patch to the caller's company. Manager only.
func (s *CompanyService) UpdateOwnCompany(ctx context.Context, actor domain.Actor, patch CompanyPatch) (*domain.Company, error) {
	if err := s.guard.RequireManager(actor); err != nil {
		return nil, err
	}
	company, err := s.guard.firmCompany(ctx, actor)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if patch.Name != nil {
		if name := strings.TrimSpace(*patch.Name); name == "" {
			fields["name"] = "must not be empty"
		} else {
			company.Name = name
		}
	}
	if patch.Description != nil {
		company.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.LocationText != nil {
		company.LocationText = strings.TrimSpace(*patch.LocationText)
	}
	settings := &company.Settings
	if patch.Phone != nil {
		settings.Phone = optionalText(*patch.Phone)
	}
	if patch.Email != nil {
		settings.Email = optionalText(*patch.Email)
		if settings.Email != nil {
			if _, err := mail.ParseAddress(*settings.Email); err != nil {
				fields["email"] = "invalid email address"
			}
		}
	}
	if patch.TaxNumber != nil {
		settings.TaxNumber = optionalText(*patch.TaxNumber)
	}
	if patch.MinOrderAmount != nil {
		if patch.MinOrderAmount.IsNegative() {
			fields["min_order_amount"] = "must not be negative"
		}
		settings.MinOrderAmount = decimal.NewNullDecimal(*patch.MinOrderAmount)
	}
	if patch.DefaultDeliveryFee != nil {
		if patch.DefaultDeliveryFee.IsNegative() {
			fields["default_delivery_fee"] = "must not be negative"
		}
		settings.DefaultDeliveryFee = decimal.NewNullDecimal(*patch.DefaultDeliveryFee)
	}
	if patch.EstimatedDeliveryMinutes != nil {
		if *patch.EstimatedDeliveryMinutes < 0 {
			fields["estimated_delivery_minutes"] = "must not be negative"
		}
		minutes := *patch.EstimatedDeliveryMinutes
		settings.EstimatedDeliveryMinutes = &minutes
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid company settings", fields)
	}

	if err := s.companies.Update(ctx, company); err != nil {
		return nil, mapRepoErr(err, "company")
	}
	s.logger.Info("company settings updated", zap.Int64("company_id", company.ID), zap.Int64("actor_id", actor.UserID))
	return company, nil
}

func optionalText(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
