package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/referral-service/internal/api/http/handlers"
	"github.com/spec-kit/referral-service/internal/auth"
	"github.com/spec-kit/referral-service/internal/config"
	"github.com/spec-kit/referral-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Catalog        *handlers.CatalogHandler
	Referrals      *handlers.ReferralsHandler
	Firm           *handlers.FirmHandler
	Employees      *handlers.EmployeesHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	RateLimit      config.RateLimitConfig
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	app.Get("/categories", cfg.Catalog.ListCategories)
	app.Get("/services/search", cfg.Catalog.Search)
	app.Get("/services/:id", cfg.Catalog.GetService)

	app.Post("/referral/create", RateLimit(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst), cfg.Referrals.Create)

	app.Post("/company/request/:id/action", cfg.AuthMiddleware.Handle, auth.RequireFirmMember(), cfg.Referrals.Action)

	firm := app.Group("/firm", cfg.AuthMiddleware.Handle, auth.RequireFirmMember())
	firm.Get("", cfg.Firm.GetFirm)
	firm.Get("/my-referrals", cfg.Referrals.MyReferrals)
	firm.Get("/referrals/:id", cfg.Referrals.Get)
	firm.Get("/company", cfg.Firm.GetCompany)
	firm.Put("/company", cfg.Firm.UpdateCompany)
	firm.Get("/employees", cfg.Employees.List)
	firm.Post("/employees", cfg.Employees.Create)
	firm.Put("/employees/:id", cfg.Employees.Update)
	firm.Delete("/employees/:id", cfg.Employees.Delete)
	firm.Post("/services", cfg.Catalog.CreateService)
	firm.Put("/services/:id", cfg.Catalog.UpdateService)
	firm.Delete("/services/:id", cfg.Catalog.DeleteService)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireSuperuser())
	admin.Get("/referrals", cfg.Referrals.AdminList)
	admin.Post("/firms", cfg.Admin.RegisterFirm)
	admin.Post("/sweeps", cfg.Admin.Sweep)
}
