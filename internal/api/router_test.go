package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
	"github.com/99minutos/route-tracking/internal/infrastructure/http/handlers"
)

const testSecret = "secret"

// ----- Stubs -----

type stubRoutes struct {
	ports.RouteService
	route *domain.Route
}

func (s *stubRoutes) Get(_ context.Context, id string) (*domain.Route, error) {
	if id != s.route.ID {
		return nil, domain.ErrRouteNotFound
	}
	return s.route, nil
}

func (s *stubRoutes) CurrentStop(context.Context, string) (*domain.Stop, error) {
	return nil, domain.ErrRouteComplete
}

type stubTracker struct {
	ports.PackageTracker
}

// ----- Helpers -----

func newTestRouter() *echo.Echo {
	return NewRouter(Dependencies{
		Routes:     &stubRoutes{route: &domain.Route{ID: "route-1", DriverID: "driver-7", State: domain.RouteCompleted}},
		Tracker:    &stubTracker{},
		JWTSecret:  testSecret,
		Readiness:  map[string]handlers.Pinger{},
		Log:        zerolog.Nop(),
		Registerer: prometheus.NewRegistry(),
	})
}

func bearer(t *testing.T, role, driverID string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       "user-1",
		"role":      role,
		"driver_id": driverID,
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func serve(e *echo.Echo, method, target, auth, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// ----- Tests -----

func TestRouter_PublicEndpoints(t *testing.T) {
	e := newTestRouter()

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		if rec := serve(e, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	e := newTestRouter()

	rec := serve(e, http.MethodGet, "/v1/routes/route-1", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_RoleEnforcement(t *testing.T) {
	e := newTestRouter()
	driver := bearer(t, domain.RoleDriver, "driver-7")

	rec := serve(e, http.MethodPost, "/v1/routes", driver, `{}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("driver planning a route: expected 403, got %d", rec.Code)
	}

	rec = serve(e, http.MethodPost, "/v1/packages/1234/transitions", driver, `{"event":"driver_departs"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("driver manual transition: expected 403, got %d", rec.Code)
	}
}

func TestRouter_ErrorMapping(t *testing.T) {
	e := newTestRouter()
	dispatcher := bearer(t, domain.RoleDispatcher, "")

	if rec := serve(e, http.MethodGet, "/v1/routes/unknown", dispatcher, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown route: expected 404, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/v1/routes/route-1/current-stop", dispatcher, ""); rec.Code != http.StatusConflict {
		t.Errorf("completed route: expected 409, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/v1/routes/route-1", bearer(t, domain.RoleDriver, "driver-8"), ""); rec.Code != http.StatusForbidden {
		t.Errorf("foreign driver: expected 403, got %d", rec.Code)
	}
}
