package location

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Danielopol/Metrosocial/internal/identity"
	"github.com/Danielopol/Metrosocial/internal/presence"
)

func signFor(t *testing.T, p identity.Principal) string {
	t.Helper()
	token, err := identity.Sign("secret", p, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestReportLocationRoute(t *testing.T) {
	reg := presence.NewRegistry()
	tracker := NewTracker(reg)
	app := fiber.New()
	RegisterRoutes(app.Group("/location"), tracker, identity.JWTMiddleware("secret"), 0)

	body := `{"location":{"latitude":40.7128,"longitude":-74.0060}}`
	req := httptest.NewRequest(http.MethodPost, "/location/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signFor(t, identity.Principal{ID: "user-1", Username: "alice"}))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	rec, ok := tracker.Get("user-1")
	if !ok || rec.Location.Latitude != 40.7128 {
		t.Fatalf("expected stored location record")
	}
}

func TestNearbyRouteDefaultRadius(t *testing.T) {
	reg := presence.NewRegistry()
	tracker := NewTracker(reg)
	app := fiber.New()
	RegisterRoutes(app.Group("/location"), tracker, identity.JWTMiddleware("secret"), 0)

	bob := identity.Principal{ID: "user-b", Username: "bob"}
	reg.MarkOnline(bob)
	tracker.Report(bob, Location{Latitude: 40.7130, Longitude: -74.0062})

	req := httptest.NewRequest(http.MethodGet, "/location/nearby?latitude=40.7128&longitude=-74.0060", nil)
	req.Header.Set("Authorization", "Bearer "+signFor(t, identity.Principal{ID: "user-a", Username: "alice"}))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Users []NearbyUser `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Users) != 1 || body.Users[0].UserID != "user-b" {
		t.Fatalf("unexpected nearby users: %+v", body.Users)
	}
}

func TestNearbyRouteBadParams(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/location"), NewTracker(presence.NewRegistry()), identity.JWTMiddleware("secret"), 0)

	token := signFor(t, identity.Principal{ID: "user-a", Username: "alice"})

	req := httptest.NewRequest(http.MethodGet, "/location/nearby", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without coordinates")
	}

	req = httptest.NewRequest(http.MethodGet, "/location/nearby?latitude=1&longitude=2&radius=abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad radius")
	}
}
