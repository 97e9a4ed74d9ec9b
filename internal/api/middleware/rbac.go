package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RBAC admits requests whose token role is one of roles. Dispatchers manage
// routes and override package states; drivers work their own routes. A token
// without a role is unauthenticated, any other role is forbidden.
func RBAC(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing role claim")
			}
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("role %s may not %s %s", role, c.Request().Method, c.Path()))
			}
			return next(c)
		}
	}
}
