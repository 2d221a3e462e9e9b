package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cinefind/moviesearch/internal/api/handler"
	"github.com/cinefind/moviesearch/internal/core/domain"
)

type resolved struct {
	status  int
	code    string
	message string
	details map[string]string
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the standard envelope with success=false.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		r := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(r.status)
			return
		}
		_ = handler.Fail(c, r.status, r.code, r.message, r.details)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) resolved {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return resolved{http.StatusBadRequest, "validation_failed", "validation failed", ve.Fields}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return resolved{status: he.Code, code: codeFor(he.Code), message: fmt.Sprintf("%v", he.Message)}
	}

	switch {
	case errors.Is(err, domain.ErrConflict):
		return resolved{status: http.StatusConflict, code: "conflict", message: "email already registered"}
	case errors.Is(err, domain.ErrTokenRevoked):
		return resolved{status: http.StatusUnauthorized, code: "unauthorized", message: "session has been revoked"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return resolved{status: http.StatusUnauthorized, code: "unauthorized", message: "invalid email or password"}
	case errors.Is(err, domain.ErrAuthentication):
		return resolved{status: http.StatusUnauthorized, code: "unauthorized", message: "invalid or expired session"}
	case errors.Is(err, domain.ErrResetTokenExpired):
		return resolved{status: http.StatusGone, code: "token_expired", message: "reset token has expired"}
	case errors.Is(err, domain.ErrToken):
		return resolved{status: http.StatusUnauthorized, code: "token_invalid", message: "reset token is invalid or already used"}
	case errors.Is(err, domain.ErrForbidden):
		return resolved{status: http.StatusForbidden, code: "forbidden", message: "access forbidden"}
	case errors.Is(err, domain.ErrAccountNotFound):
		return resolved{status: http.StatusNotFound, code: "not_found", message: "account not found"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return resolved{status: http.StatusInternalServerError, code: "internal", message: "internal server error"}
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	if status >= http.StatusInternalServerError {
		return "internal"
	}
	return "error"
}
