package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/cinefind/moviesearch/internal/pkg/validation"
)

// NewValidator returns the validator assigned to echo.Echo.Validator. Its
// errors are *domain.ValidationError, which the error handler renders as 400
// with per-field details.
func NewValidator() echo.Validator {
	return validation.New()
}
