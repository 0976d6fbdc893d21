package presence

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Danielopol/Metrosocial/internal/identity"
)

func testApp(reg *Registry) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/users"), reg, identity.JWTMiddleware("secret"))
	return app
}

func authedRequest(t *testing.T, method, target string) *http.Request {
	t.Helper()
	token, err := identity.Sign("secret", identity.Principal{ID: "user-1", Username: "alice", Avatar: "🙂"}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestOnlineOfflineRoutes(t *testing.T) {
	reg := NewRegistry()
	app := testApp(reg)

	resp, err := app.Test(authedRequest(t, http.MethodPost, "/users/online"))
	if err != nil {
		t.Fatalf("online request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !reg.IsOnline("user-1") {
		t.Fatalf("expected user online")
	}

	resp, err = app.Test(authedRequest(t, http.MethodGet, "/users/online"))
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	var body struct {
		Count int      `json:"count"`
		Users []Record `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || len(body.Users) != 1 || body.Users[0].UserID != "user-1" {
		t.Fatalf("unexpected online list: %+v", body)
	}

	resp, err = app.Test(authedRequest(t, http.MethodPost, "/users/offline"))
	if err != nil {
		t.Fatalf("offline request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if reg.IsOnline("user-1") {
		t.Fatalf("expected user offline")
	}
}

func TestRoutesRequireAuth(t *testing.T) {
	app := testApp(NewRegistry())

	req := httptest.NewRequest(http.MethodPost, "/users/online", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized without token")
	}
}
