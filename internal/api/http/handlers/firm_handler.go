package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/referral-service/internal/api/dto"
	"github.com/spec-kit/referral-service/internal/auth"
	"github.com/spec-kit/referral-service/internal/service"
)

// FirmHandler exposes the caller's firm and company settings.
type FirmHandler struct {
	firms     *service.FirmService
	companies *service.CompanyService
}

// NewFirmHandler constructs handler.
func NewFirmHandler(firmService *service.FirmService, companyService *service.CompanyService) *FirmHandler {
	return &FirmHandler{firms: firmService, companies: companyService}
}

// GetFirm handles GET /firm.
func (h *FirmHandler) GetFirm(c *fiber.Ctx) error {
	firm, err := h.firms.GetFirm(c.UserContext(), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": firmResponse(firm)})
}

// GetCompany handles GET /firm/company.
func (h *FirmHandler) GetCompany(c *fiber.Ctx) error {
	company, err := h.companies.GetOwnCompany(c.UserContext(), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(company)})
}

// UpdateCompany handles PUT /firm/company.
func (h *FirmHandler) UpdateCompany(c *fiber.Ctx) error {
	var req dto.UpdateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	company, err := h.companies.UpdateOwnCompany(c.UserContext(), auth.ActorFromContext(c), service.CompanyPatch{
		Name:                     req.Name,
		Description:              req.Description,
		LocationText:             req.Location,
		Phone:                    req.Phone,
		Email:                    req.Email,
		TaxNumber:                req.TaxNumber,
		MinOrderAmount:           req.MinOrderAmount,
		DefaultDeliveryFee:       req.DefaultDeliveryFee,
		EstimatedDeliveryMinutes: req.EstimatedDeliveryMinutes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(company)})
}
