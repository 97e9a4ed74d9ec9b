package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/route-tracking/docs"
	"github.com/99minutos/route-tracking/internal/api/handler"
	"github.com/99minutos/route-tracking/internal/api/middleware"
	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
	"github.com/99minutos/route-tracking/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators the HTTP layer needs.
type Dependencies struct {
	Routes    ports.RouteService
	Tracker   ports.PackageTracker
	JWTSecret string
	Readiness map[string]handlers.Pinger
	Log       zerolog.Logger
	// Registerer receives the HTTP request metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	reg := deps.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "route_tracking",
		Registerer: reg,
	}))

	// --- Public endpoints ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Authenticated API ---
	routeHandler := handler.NewRouteHandler(deps.Routes)
	packageHandler := handler.NewPackageHandler(deps.Tracker, deps.Routes)

	dispatcher := middleware.RBAC(domain.RoleDispatcher)
	driver := middleware.RBAC(domain.RoleDriver)
	anyRole := middleware.RBAC(domain.RoleDispatcher, domain.RoleDriver)

	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret))

	routes := v1.Group("/routes")
	routes.POST("", routeHandler.Plan, dispatcher)
	routes.GET("/:id", routeHandler.Get, anyRole)
	routes.GET("/:id/packages", routeHandler.Packages, anyRole)
	routes.POST("/:id/reorder", routeHandler.Reorder, dispatcher)
	routes.POST("/:id/start", routeHandler.Start, driver)
	routes.POST("/:id/advance", routeHandler.Advance, driver)
	routes.GET("/:id/current-stop", routeHandler.CurrentStop, anyRole)

	packages := v1.Group("/packages")
	packages.GET("/:id", packageHandler.Get, anyRole)
	packages.POST("/:id/transitions", packageHandler.Transition, dispatcher)

	return e
}

// requestLogger writes one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
