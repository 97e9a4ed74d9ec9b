package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/service"
)

// retryAfterSeconds is sent with responses the client may retry.
const retryAfterSeconds = "1"

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error     string `json:"error"`
	StopID    string `json:"stop_id,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Adds Retry-After to transient failures.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if body.Retryable {
			c.Response().Header().Set("Retry-After", retryAfterSeconds)
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Checked before ErrNotFound: an unresolved stop wraps the geocoder error.
	var su *domain.StopUnresolvedError
	if errors.As(err, &su) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:     su.Error(),
			StopID:    su.StopID,
			Retryable: service.IsRetryable(err),
		}
	}

	switch {
	case errors.Is(err, domain.ErrRouteNotFound):
		return http.StatusNotFound, errorResponse{Error: "route not found"}
	case errors.Is(err, domain.ErrPackageNotFound):
		return http.StatusNotFound, errorResponse{Error: "package not found"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrNoRouteFound),
		errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrPackageBusy),
		errors.Is(err, domain.ErrConcurrentUpdate):
		return http.StatusConflict, errorResponse{Error: err.Error(), Retryable: true}
	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrRouteComplete),
		errors.Is(err, domain.ErrEmptyItinerary):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrServiceUnavailable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("upstream unavailable")
		return http.StatusServiceUnavailable, errorResponse{Error: "upstream service unavailable", Retryable: true}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
