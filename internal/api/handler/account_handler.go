package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinefind/moviesearch/internal/api/metrics"
	"github.com/cinefind/moviesearch/internal/core/domain"
	"github.com/cinefind/moviesearch/internal/core/ports"
)

// ResetQueue is the interface the handler uses to defer reset requests.
type ResetQueue interface {
	Enqueue(email string) bool
}

// AccountHandler handles signup, login, session and password reset requests.
type AccountHandler struct {
	service     ports.AccountService
	resets      ResetQueue
	revocations ports.RevocationList
}

// NewAccountHandler creates an AccountHandler. revocations may be nil, in
// which case logout is unavailable.
func NewAccountHandler(service ports.AccountService, resets ResetQueue, revocations ports.RevocationList) *AccountHandler {
	return &AccountHandler{service: service, resets: resets, revocations: revocations}
}

// Signup registers a new account and opens a session for it.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  Response
// @Failure      409   {object}  Response
// @Failure      429   {object}  Response
// @Router       /signup [post]
func (h *AccountHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("signup", outcome(err)).Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("signup", "success").Inc()
	return c.JSON(http.StatusCreated, sessionResponse{
		Success: true,
		Message: "Account created",
		Data:    toSessionData(res),
	})
}

// Login authenticates with email and password.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  Response
// @Failure      401   {object}  Response
// @Failure      429   {object}  Response
// @Router       /login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.service.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", outcome(err)).Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return c.JSON(http.StatusOK, sessionResponse{
		Success: true,
		Message: "Login successful",
		Data:    toSessionData(res),
	})
}

// RequestReset queues a password reset email. The response is the same
// whether or not the address belongs to an account.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Account email"
// @Success      202   {object}  messageResponse
// @Failure      400   {object}  Response
// @Failure      429   {object}  Response
// @Router       /reset-password [post]
func (h *AccountHandler) RequestReset(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Email = domain.NormalizeEmail(req.Email)
	if err := c.Validate(&req); err != nil {
		return err
	}

	if h.resets.Enqueue(req.Email) {
		metrics.ResetRequestsTotal.WithLabelValues("queued").Inc()
	} else {
		metrics.ResetRequestsTotal.WithLabelValues("dropped").Inc()
	}

	return c.JSON(http.StatusAccepted, messageResponse{
		Success: true,
		Message: "If the email is registered, a reset link has been sent",
	})
}

// ConfirmReset sets a new password using a reset token.
//
// @Summary      Confirm a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      confirmResetRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  Response
// @Failure      401   {object}  Response
// @Failure      410   {object}  Response
// @Router       /confirm-reset [post]
func (h *AccountHandler) ConfirmReset(c echo.Context) error {
	var req confirmResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.service.ConfirmPasswordReset(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		metrics.ResetConfirmationsTotal.WithLabelValues(outcome(err)).Inc()
		return err
	}

	metrics.ResetConfirmationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, messageResponse{
		Success: true,
		Message: "Password has been reset",
	})
}

// Me returns the claims of the current session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  Response
// @Router       /me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{
		Success: true,
		Message: "Session is valid",
		Data:    *claims,
	})
}

// Logout revokes the current session token until it would have expired.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  Response
// @Failure      503  {object}  Response
// @Router       /logout [post]
func (h *AccountHandler) Logout(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if h.revocations == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "session revocation is not configured")
	}

	if err := h.revocations.Revoke(c.Request().Context(), claims.TokenID, claims.ExpiresAt); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{
		Success: true,
		Message: "Logged out",
	})
}

// AdminOnly is a sample endpoint gated on the ADMIN role.
//
// @Summary      Admin-only greeting
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Failure      401  {object}  Response
// @Failure      403  {object}  Response
// @Router       /admin-only [get]
func (h *AccountHandler) AdminOnly(c echo.Context) error {
	return respond(c, http.StatusOK, "Welcome admin!", map[string]string{
		"message": "This is an admin-only endpoint",
	})
}

func toSessionData(res *ports.SessionResult) sessionData {
	return sessionData{
		User:      res.Account,
		Token:     res.Session.Value,
		ExpiresAt: res.Session.ExpiresAt.UTC().Truncate(time.Second),
	}
}

// outcome labels an error for the auth metrics.
func outcome(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrAuthentication):
		return "unauthorized"
	case errors.Is(err, domain.ErrResetTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrToken):
		return "invalid"
	}
	return "error"
}
