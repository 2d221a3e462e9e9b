package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinefind/moviesearch/internal/core/domain"
	"github.com/cinefind/moviesearch/internal/core/ports"
)

// AdminHandler handles administrative account operations.
type AdminHandler struct {
	service ports.AccountService
}

func NewAdminHandler(service ports.AccountService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ChangeRole sets the role of an account.
//
// @Summary      Change an account's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Account ID"
// @Param        body  body      changeRoleRequest  true  "New role"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  Response
// @Failure      401   {object}  Response
// @Failure      403   {object}  Response
// @Failure      404   {object}  Response
// @Router       /admin/accounts/{id}/role [patch]
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	var req changeRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	account, err := h.service.ChangeRole(c.Request().Context(), c.Param("id"), role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{
		Success: true,
		Message: "Role updated",
		Data:    *account,
	})
}
