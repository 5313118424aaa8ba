package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/referral-service/internal/api/dto"
	"github.com/spec-kit/referral-service/internal/auth"
	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/service"
)

// ReferralsHandler exposes the referral lifecycle.
type ReferralsHandler struct {
	service *service.ReferralService
}

// NewReferralsHandler constructs handler.
func NewReferralsHandler(referralService *service.ReferralService) *ReferralsHandler {
	return &ReferralsHandler{service: referralService}
}

// Create handles POST /referral/create.
func (h *ReferralsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	view, err := h.service.Create(c.UserContext(), service.ReferralCreateInput{
		TargetCompanyID:    req.TargetCompanyID,
		RequestedServiceID: req.RequestedServiceID,
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		Description:        req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": referralResponse(view)})
}

// MyReferrals handles GET /firm/my-referrals.
func (h *ReferralsHandler) MyReferrals(c *fiber.Ctx) error {
	views, err := h.service.ListForActor(c.UserContext(), auth.ActorFromContext(c), listFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": referralResponses(views)})
}

// Get handles GET /firm/referrals/:id.
func (h *ReferralsHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.UserContext(), auth.ActorFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": referralResponse(view)})
}

// Action handles POST /company/request/:id/action. The action may come from the body or ?action=.
func (h *ReferralsHandler) Action(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReferralActionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidPayload()
		}
	}
	action := strings.ToLower(strings.TrimSpace(req.Action))
	if action == "" {
		action = strings.ToLower(strings.TrimSpace(c.Query("action")))
	}

	view, err := h.service.Transition(c.UserContext(), auth.ActorFromContext(c), id, domain.ReferralAction(action))
	if err != nil {
		return err
	}
	return c.JSON(dto.ReferralActionResponse{
		Success: true,
		Message: "Request " + string(view.Request.Status),
		Data:    referralResponse(view),
	})
}

// AdminList handles GET /admin/referrals.
func (h *ReferralsHandler) AdminList(c *fiber.Ctx) error {
	views, err := h.service.ListAll(c.UserContext(), auth.ActorFromContext(c), listFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": referralResponses(views)})
}

// listFilter reads ?status= and optional paging; without page_size every row is returned.
func listFilter(c *fiber.Ctx) service.ReferralListFilter {
	filter := service.ReferralListFilter{}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		s := domain.ReferralStatus(strings.ToLower(status))
		filter.Status = &s
	}
	if c.Query("page_size") != "" {
		filter.Limit, filter.Offset = pagination(c)
	}
	return filter
}
