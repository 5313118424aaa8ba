package handlers

import (
	"github.com/shopspring/decimal"

	"github.com/spec-kit/referral-service/internal/api/dto"
	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/service"
)

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		Role:          u.Role,
		FirmID:        u.FirmID,
		IsFirmManager: u.IsFirmManager(),
		IsSuperuser:   u.IsSuperuser(),
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt,
	}
}

func referralResponse(view *domain.ReferralView) dto.ReferralResponse {
	req := view.Request
	resp := dto.ReferralResponse{
		ID:                 req.ID,
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		Description:        req.Description,
		TargetCompanyID:    req.TargetCompanyID,
		RequestedServiceID: req.RequestedServiceID,
		Status:             req.Status,
		IsCommissionDue:    req.IsCommissionDue,
		CommissionAmount:   req.CommissionAmount.StringFixed(2),
		CreatedAt:          req.CreatedAt,
		UpdatedAt:          req.UpdatedAt,
	}
	if view.Company != nil {
		summary := companySummary(view.Company)
		resp.TargetCompany = &summary
	}
	if view.Service != nil {
		summary := serviceSummary(view.Service)
		resp.RequestedService = &summary
	}
	return resp
}

func referralResponses(views []domain.ReferralView) []dto.ReferralResponse {
	items := make([]dto.ReferralResponse, 0, len(views))
	for i := range views {
		items = append(items, referralResponse(&views[i]))
	}
	return items
}

func companySummary(c *domain.Company) dto.CompanySummary {
	return dto.CompanySummary{ID: c.ID, Name: c.Name, Slug: c.Slug, Location: c.LocationText}
}

func serviceSummary(s *domain.Service) dto.ServiceSummary {
	return dto.ServiceSummary{
		ID:          s.ID,
		CompanyID:   s.CompanyID,
		CategoryID:  s.CategoryID,
		Title:       s.Title,
		Description: s.Description,
		Keywords:    s.Keywords,
		PriceMin:    money(s.PriceMin),
		PriceMax:    money(s.PriceMax),
	}
}

func serviceResponse(view *service.ServiceView) dto.ServiceResponse {
	resp := dto.ServiceResponse{
		ServiceSummary: serviceSummary(view.Service),
		CreatedAt:      view.Service.CreatedAt,
		UpdatedAt:      view.Service.UpdatedAt,
	}
	if view.Company != nil {
		summary := companySummary(view.Company)
		resp.Company = &summary
	}
	if view.Category != nil {
		category := categoryResponse(view.Category)
		resp.Category = &category
	}
	return resp
}

func categoryResponse(c *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

func companyResponse(c *domain.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:                       c.ID,
		FirmID:                   c.FirmID,
		Name:                     c.Name,
		Slug:                     c.Slug,
		Description:              c.Description,
		Location:                 c.LocationText,
		Phone:                    c.Settings.Phone,
		Email:                    c.Settings.Email,
		TaxNumber:                c.Settings.TaxNumber,
		MinOrderAmount:           money(c.Settings.MinOrderAmount),
		DefaultDeliveryFee:       money(c.Settings.DefaultDeliveryFee),
		EstimatedDeliveryMinutes: c.Settings.EstimatedDeliveryMinutes,
		CreatedAt:                c.CreatedAt,
		UpdatedAt:                c.UpdatedAt,
	}
}

func firmResponse(f *domain.Firm) dto.FirmResponse {
	return dto.FirmResponse{
		ID:        f.ID,
		Name:      f.Name,
		Slug:      f.Slug,
		Location:  f.Location,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
	}
}

// money renders an optional amount with two decimals.
func money(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}
