package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
)

// RBAC lets the request through only when Auth stored one of allowedRoles.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden: insufficient role")
			}
			return next(c)
		}
	}
}
