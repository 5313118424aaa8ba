package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/referral-service/internal/api/dto"
	"github.com/spec-kit/referral-service/internal/auth"
	"github.com/spec-kit/referral-service/internal/service"
)

// Sweeper runs an immediate timeout sweep.
type Sweeper interface {
	SweepTimeouts(ctx context.Context) (int64, error)
}

// AdminHandler exposes superuser operations.
type AdminHandler struct {
	firms   *service.FirmService
	sweeper Sweeper
}

// NewAdminHandler constructs handler.
func NewAdminHandler(firmService *service.FirmService, sweeper Sweeper) *AdminHandler {
	return &AdminHandler{firms: firmService, sweeper: sweeper}
}

// RegisterFirm handles POST /admin/firms.
func (h *AdminHandler) RegisterFirm(c *fiber.Ctx) error {
	var req dto.RegisterFirmRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	reg, err := h.firms.RegisterFirm(c.UserContext(), auth.ActorFromContext(c), service.FirmRegisterInput{
		Name:            req.Name,
		Slug:            req.Slug,
		Location:        req.Location,
		CompanyName:     req.CompanyName,
		Description:     req.Description,
		ManagerUsername: req.ManagerUsername,
		ManagerEmail:    req.ManagerEmail,
		ManagerFullName: req.ManagerFullName,
		ManagerPassword: req.ManagerPassword,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.RegisterFirmResponse{
		FirmID:    reg.Firm.ID,
		CompanyID: reg.Company.ID,
		UserID:    reg.Manager.ID,
	}})
}

// Sweep handles POST /admin/sweeps.
func (h *AdminHandler) Sweep(c *fiber.Ctx) error {
	count, err := h.sweeper.SweepTimeouts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SweepResponse{TimedOut: count}})
}
