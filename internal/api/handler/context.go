package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinefind/moviesearch/internal/api/middleware"
	"github.com/cinefind/moviesearch/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. A missing
// account id means the middleware did not run for this route.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil || claims.AccountID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
