package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/whoami", GatewayAuthMiddleware("s3cret"), UserContextMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(PlayerID(c))
	})
	return app
}

func TestGatewayAndUserContext(t *testing.T) {
	tests := []struct {
		name   string
		auth   string
		user   string
		status int
	}{
		{"bearer token", "Bearer s3cret", "7", fiber.StatusOK},
		{"raw token", "s3cret", "7", fiber.StatusOK},
		{"missing token", "", "7", fiber.StatusUnauthorized},
		{"wrong token", "Bearer nope", "7", fiber.StatusUnauthorized},
		{"missing user", "Bearer s3cret", "", fiber.StatusUnauthorized},
		{"blank user", "Bearer s3cret", "   ", fiber.StatusUnauthorized},
	}
	app := newApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			if tt.user != "" {
				req.Header.Set("X-User-ID", tt.user)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestGatewayAuth_EmptyExpectedTokenRejectsAll(t *testing.T) {
	app := fiber.New()
	app.Get("/", GatewayAuthMiddleware(""), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer ")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
