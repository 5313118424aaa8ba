package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/referral-service/internal/api/dto"
	"github.com/spec-kit/referral-service/internal/auth"
	"github.com/spec-kit/referral-service/internal/service"
)

// CatalogHandler exposes categories and services.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: catalogService}
}

// ListCategories handles GET /categories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, categoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Search handles GET /services/search?q=&location=&category=.
func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	views, err := h.service.SearchServices(c.UserContext(), service.ServiceSearch{
		Query:    c.Query("q"),
		Location: c.Query("location"),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.ServiceResponse, 0, len(views))
	for i := range views {
		items = append(items, serviceResponse(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetService handles GET /services/:id.
func (h *CatalogHandler) GetService(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.service.GetService(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(view)})
}

// CreateService handles POST /firm/services.
func (h *CatalogHandler) CreateService(c *fiber.Ctx) error {
	input, err := serviceInput(c)
	if err != nil {
		return err
	}
	view, err := h.service.CreateService(c.UserContext(), auth.ActorFromContext(c), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": serviceResponse(view)})
}

// UpdateService handles PUT /firm/services/:id.
func (h *CatalogHandler) UpdateService(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	input, err := serviceInput(c)
	if err != nil {
		return err
	}
	view, err := h.service.UpdateService(c.UserContext(), auth.ActorFromContext(c), id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(view)})
}

// DeleteService handles DELETE /firm/services/:id.
func (h *CatalogHandler) DeleteService(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteService(c.UserContext(), auth.ActorFromContext(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func serviceInput(c *fiber.Ctx) (service.ServiceInput, error) {
	var req dto.ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return service.ServiceInput{}, invalidPayload()
	}
	return service.ServiceInput{
		CompanyID:   req.CompanyID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Keywords:    req.Keywords,
		PriceMin:    req.PriceMin,
		PriceMax:    req.PriceMax,
	}, nil
}
