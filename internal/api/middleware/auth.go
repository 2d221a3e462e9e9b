package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cinefind/moviesearch/internal/api/metrics"
	"github.com/cinefind/moviesearch/internal/core/domain"
	"github.com/cinefind/moviesearch/internal/core/ports"
)

const claimsKey = "claims"

// SessionVerifier validates a raw bearer token.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (*domain.Claims, error)
}

// Auth validates the bearer token and injects its claims into the context.
// When revocations is non-nil, tokens on the denylist are rejected and a
// denylist failure rejects the request.
func Auth(verifier SessionVerifier, revocations ports.RevocationList, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.SessionRejectionsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				metrics.SessionRejectionsTotal.WithLabelValues("malformed").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			ctx := c.Request().Context()
			claims, err := verifier.VerifySession(ctx, strings.TrimSpace(parts[1]))
			if err != nil {
				metrics.SessionRejectionsTotal.WithLabelValues("invalid").Inc()
				return err
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(ctx, claims.TokenID)
				if err != nil {
					metrics.SessionRejectionsTotal.WithLabelValues("denylist_error").Inc()
					log.Error().Err(err).Msg("session denylist lookup failed")
					return echo.NewHTTPError(http.StatusServiceUnavailable, "session check unavailable")
				}
				if revoked {
					metrics.SessionRejectionsTotal.WithLabelValues("revoked").Inc()
					return domain.ErrTokenRevoked
				}
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Auth, or nil.
func ClaimsFrom(c echo.Context) *domain.Claims {
	claims, _ := c.Get(claimsKey).(*domain.Claims)
	return claims
}

// SetClaims stores claims the way Auth does.
func SetClaims(c echo.Context, claims *domain.Claims) {
	c.Set(claimsKey, claims)
}
