package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/route-tracking/internal/api/middleware"
	"github.com/99minutos/route-tracking/internal/core/domain"
)

// ctxActor extracts the auth claims injected by the Auth middleware:
//   - role must be non-empty (presence proves the middleware ran).
//   - driver role requires a non-empty driver_id, otherwise the token cannot
//     be matched against a route and is rejected with 401.
func ctxActor(c echo.Context) (role, driverID string, err error) {
	role, _ = c.Get(middleware.CtxRole).(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	driverID, _ = c.Get(middleware.CtxDriverID).(string)
	if role == domain.RoleDriver && driverID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "token missing driver identity")
	}

	return role, driverID, nil
}

// authorizeRoute lets dispatchers see every route and drivers only their own.
func authorizeRoute(c echo.Context, route *domain.Route) error {
	role, driverID, err := ctxActor(c)
	if err != nil {
		return err
	}
	if role == domain.RoleDriver && route.DriverID != driverID {
		return fmt.Errorf("route %s: %w", route.ID, domain.ErrForbidden)
	}
	return nil
}
