package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/cinefind/moviesearch/internal/core/domain"
	"github.com/cinefind/moviesearch/internal/core/service"
)

// RBAC enforces role-based access control. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := service.Authorize(ClaimsFrom(c), allowedRoles...); err != nil {
				return err
			}
			return next(c)
		}
	}
}
