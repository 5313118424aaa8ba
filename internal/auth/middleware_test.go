package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/repository/memory"
	apperrors "github.com/spec-kit/referral-service/pkg/util/errorutil"
)

func newTestApp(t *testing.T) (*fiber.App, *TokenManager, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	tokens := NewTokenManager("secret", 30)
	mw := NewAuthMiddleware(tokens, store.Users())

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).SendString(de.Code)
	}})
	app.Get("/public", mw.Optional, func(c *fiber.Ctx) error {
		if ActorFromContext(c).Authenticated() {
			return c.SendString("user")
		}
		return c.SendString("anonymous")
	})
	app.Get("/admin", mw.Handle, RequireSuperuser(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })
	app.Get("/firm", mw.Handle, RequireFirmMember(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })
	return app, tokens, store
}

func doGet(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func TestAuthMiddlewareResolvesActor(t *testing.T) {
	app, tokens, store := newTestApp(t)
	ctx := context.Background()

	customer := &domain.User{Username: "c", Email: "c@x", Role: domain.RoleCustomer, IsActive: true}
	admin := &domain.User{Username: "a", Email: "a@x", Role: domain.RoleAdmin, IsActive: true}
	for _, u := range []*domain.User{customer, admin} {
		if err := store.Users().Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	customerToken, _, _ := tokens.GenerateToken(customer)
	adminToken, _, _ := tokens.GenerateToken(admin)

	cases := []struct {
		path   string
		token  string
		status int
	}{
		{"/public", "", http.StatusOK},
		{"/public", "garbage", http.StatusUnauthorized},
		{"/admin", "", http.StatusUnauthorized},
		{"/admin", customerToken, http.StatusForbidden},
		{"/admin", adminToken, http.StatusNoContent},
		{"/firm", customerToken, http.StatusForbidden},
		{"/firm", adminToken, http.StatusNoContent},
	}
	for _, tc := range cases {
		resp := doGet(t, app, tc.path, tc.token)
		if resp.StatusCode != tc.status {
			t.Errorf("%s with token %t: got %d want %d", tc.path, tc.token != "", resp.StatusCode, tc.status)
		}
	}
}

func TestAuthMiddlewareReloadsUser(t *testing.T) {
	app, tokens, store := newTestApp(t)
	ctx := context.Background()

	u := &domain.User{Username: "m", Email: "m@x", Role: domain.RoleAdmin, IsActive: true}
	if err := store.Users().Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	token, _, _ := tokens.GenerateToken(u)

	u.Role = domain.RoleCustomer
	if err := store.Users().Update(ctx, u); err != nil {
		t.Fatal(err)
	}
	if resp := doGet(t, app, "/admin", token); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stale token role must not grant access, got %d", resp.StatusCode)
	}

	u.IsActive = false
	if err := store.Users().Update(ctx, u); err != nil {
		t.Fatal(err)
	}
	if resp := doGet(t, app, "/public", token); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("disabled account must be rejected, got %d", resp.StatusCode)
	}
}
