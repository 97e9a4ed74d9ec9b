package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

// RouteHandler exposes route planning and progress over HTTP.
type RouteHandler struct {
	service ports.RouteService
}

func NewRouteHandler(service ports.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

// Plan handles POST /v1/routes.
//
// @Summary      Plan a delivery route
// @Description  Geocodes stops without coordinates, computes the road path from the origin and registers every package as pending pickup.
// @Tags         routes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      planRouteRequest  true  "Driver, origin and ordered stops"
// @Success      201   {object}  routeResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/routes [post]
func (h *RouteHandler) Plan(c echo.Context) error {
	var req planRouteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	route, err := h.service.Plan(c.Request().Context(), toPlanInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRouteResponse(*route))
}

// Get handles GET /v1/routes/:id.
//
// @Summary      Get a route with its itinerary and progress
// @Tags         routes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Route id"
// @Success      200  {object}  routeResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/routes/{id} [get]
func (h *RouteHandler) Get(c echo.Context) error {
	route, err := h.authorizedRoute(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRouteResponse(*route))
}

// Packages handles GET /v1/routes/:id/packages.
//
// @Summary      List the packages of a route
// @Tags         routes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Route id"
// @Success      200  {array}   packageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/routes/{id}/packages [get]
func (h *RouteHandler) Packages(c echo.Context) error {
	route, err := h.authorizedRoute(c)
	if err != nil {
		return err
	}

	pkgs, err := h.service.Packages(c.Request().Context(), route.ID)
	if err != nil {
		return err
	}
	out := make([]packageResponse, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, toPackageResponse(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Reorder handles POST /v1/routes/:id/reorder.
//
// @Summary      Re-sequence the stops of a route that has not started
// @Description  Without commit the approximate order is returned and nothing is stored. With commit the itinerary is rebuilt in the new order.
// @Tags         routes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Route id"
// @Param        body  body      reorderRequest  true  "Criterion and commit flag"
// @Success      200   {object}  reorderResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/routes/{id}/reorder [post]
func (h *RouteHandler) Reorder(c echo.Context) error {
	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.service.Reorder(c.Request().Context(), c.Param("id"), domain.Criterion(req.Criterion), req.Commit)
	if err != nil {
		return err
	}

	resp := reorderResponse{Committed: res.Committed, Stops: toStopResponses(res.Stops)}
	if res.Route != nil {
		r := toRouteResponse(*res.Route)
		resp.Route = &r
	}
	return c.JSON(http.StatusOK, resp)
}

// Start handles POST /v1/routes/:id/start.
//
// @Summary      Start a route
// @Description  Marks every pending package as in transit and moves the route to in_progress.
// @Tags         routes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Route id"
// @Success      200  {object}  routeResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/routes/{id}/start [post]
func (h *RouteHandler) Start(c echo.Context) error {
	route, err := h.authorizedRoute(c)
	if err != nil {
		return err
	}

	started, err := h.service.Start(c.Request().Context(), route.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRouteResponse(*started))
}

// Advance handles POST /v1/routes/:id/advance.
//
// @Summary      Record the outcome of the current stop
// @Tags         routes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Route id"
// @Param        body  body      advanceRequest  true  "Stop outcome"
// @Success      200   {object}  advanceResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/routes/{id}/advance [post]
func (h *RouteHandler) Advance(c echo.Context) error {
	var req advanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	route, err := h.authorizedRoute(c)
	if err != nil {
		return err
	}

	res, err := h.service.Advance(c.Request().Context(), route.ID, domain.Outcome(req.Outcome), req.Reason)
	if err != nil {
		return err
	}

	resp := advanceResponse{
		Package:   toPackageResponse(res.Package),
		Completed: res.Completed,
		Route:     toRouteResponse(res.Route),
	}
	if res.NextStop != nil {
		next := toStopResponse(*res.NextStop)
		resp.NextStop = &next
	}
	return c.JSON(http.StatusOK, resp)
}

// CurrentStop handles GET /v1/routes/:id/current-stop.
//
// @Summary      Get the stop the driver should visit next
// @Tags         routes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Route id"
// @Success      200  {object}  stopResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/routes/{id}/current-stop [get]
func (h *RouteHandler) CurrentStop(c echo.Context) error {
	route, err := h.authorizedRoute(c)
	if err != nil {
		return err
	}

	stop, err := h.service.CurrentStop(c.Request().Context(), route.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStopResponse(*stop))
}

// authorizedRoute loads the route named in the path and checks that the
// caller may act on it.
func (h *RouteHandler) authorizedRoute(c echo.Context) (*domain.Route, error) {
	if _, _, err := ctxActor(c); err != nil {
		return nil, err
	}
	route, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if err := authorizeRoute(c, route); err != nil {
		return nil, err
	}
	return route, nil
}
