package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/referral-service/pkg/util/errorutil"
)

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ActorFromContext(c).Authenticated() {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireSuperuser admits admins only.
func RequireSuperuser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFromContext(c)
		if !actor.Authenticated() {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !actor.IsSuperuser() {
			return apperrors.NewForbiddenReason(apperrors.CodeNotSuperuser, "superuser required")
		}
		return c.Next()
	}
}

// RequireFirmMember admits users attached to a firm, and superusers.
func RequireFirmMember() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFromContext(c)
		if !actor.Authenticated() {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !actor.IsSuperuser() && !actor.HasFirm() {
			return apperrors.NewForbiddenReason(apperrors.CodeNoFirm, "user must belong to a firm")
		}
		return c.Next()
	}
}
