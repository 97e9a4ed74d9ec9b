package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

// PackageHandler exposes package status lookups and manual transitions.
type PackageHandler struct {
	tracker ports.PackageTracker
	routes  ports.RouteService
}

func NewPackageHandler(tracker ports.PackageTracker, routes ports.RouteService) *PackageHandler {
	return &PackageHandler{tracker: tracker, routes: routes}
}

// Get handles GET /v1/packages/:id.
//
// @Summary      Get a package status with its history
// @Tags         packages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  packageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/packages/{id} [get]
func (h *PackageHandler) Get(c echo.Context) error {
	role, _, err := ctxActor(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	pkg, err := h.tracker.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	if role == domain.RoleDriver {
		if pkg.RouteID == "" {
			return domain.ErrForbidden
		}
		route, err := h.routes.Get(ctx, pkg.RouteID)
		if err != nil {
			return err
		}
		if err := authorizeRoute(c, route); err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, toPackageResponse(*pkg))
}

// Transition handles POST /v1/packages/:id/transitions.
//
// @Summary      Apply a status event to a package
// @Description  Manual override for dispatchers. Route progress picks the change up on the next access.
// @Tags         packages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Package id"
// @Param        body  body      transitionRequest  true  "Event"
// @Success      200   {object}  packageResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/packages/{id}/transitions [post]
func (h *PackageHandler) Transition(c echo.Context) error {
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	pkg, err := h.tracker.Transition(c.Request().Context(), c.Param("id"), domain.PackageEvent(req.Event), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPackageResponse(pkg))
}
