package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(Logger())
	api := app.Group("/api", Protected(testSecret))
	api.Get("/me", func(c *fiber.Ctx) error {
		id, err := CurrentIdentity(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id.ID, "role": id.Role})
	})
	api.Get("/tutor-only", RequireRole(models.RoleTutor, models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func do(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return resp
}

func TestProtected_ResolvesIdentity(t *testing.T) {
	app := newApp()
	id := uuid.New()
	token, err := GenerateToken(testSecret, id, models.RoleStudent, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	resp := do(t, app, "/api/me", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		ID   uuid.UUID   `json:"id"`
		Role models.Role `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != id || body.Role != models.RoleStudent {
		t.Fatalf("identity = %+v", body)
	}
}

func TestProtected_Rejects(t *testing.T) {
	app := newApp()
	expired, _ := GenerateToken(testSecret, uuid.New(), models.RoleStudent, -time.Hour)
	wrongKey, _ := GenerateToken("other", uuid.New(), models.RoleStudent, time.Hour)
	badRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"role":    "SUPERUSER",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))

	for name, token := range map[string]string{"missing": "", "expired": expired, "wrong key": wrongKey, "bad role": badRole} {
		if resp := do(t, app, "/api/me", token); resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, resp.StatusCode)
		}
	}
}

func TestRequireRole(t *testing.T) {
	app := newApp()
	student, _ := GenerateToken(testSecret, uuid.New(), models.RoleStudent, time.Hour)
	tutor, _ := GenerateToken(testSecret, uuid.New(), models.RoleTutor, time.Hour)

	if resp := do(t, app, "/api/tutor-only", student); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("student status = %d, want 403", resp.StatusCode)
	}
	if resp := do(t, app, "/api/tutor-only", tutor); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("tutor status = %d, want 204", resp.StatusCode)
	}
}

func TestRateLimiter(t *testing.T) {
	app := fiber.New()
	rl := NewRateLimiter(0.001, 2, func(c *fiber.Ctx) string { return "fixed" })
	app.Get("/limited", rl.Handler(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil), -1)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil), -1)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") != "1" {
		t.Fatalf("missing Retry-After header")
	}
}
