package handler

import (
	"time"

	"github.com/cinefind/moviesearch/internal/core/domain"
)

// ── Requests ──────────────────────────────────────────────────────────────────

type signupRequest struct {
	Name     string `json:"name"     example:"Ann Lee"`
	Email    string `json:"email"    example:"ann@example.com"`
	Password string `json:"password" example:"Sup3r$ecret"`
}

type loginRequest struct {
	Email    string `json:"email"    example:"ann@example.com"`
	Password string `json:"password" example:"Sup3r$ecret"`
}

type resetPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=254" example:"ann@example.com"`
}

type confirmResetRequest struct {
	Token       string `json:"token"       example:"Jx3q..."`
	NewPassword string `json:"newPassword" example:"N3w$ecret"`
}

type changeRoleRequest struct {
	Role string `json:"role" example:"ADMIN" enums:"USER,ADMIN"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

type sessionData struct {
	User      domain.PublicAccount `json:"user"`
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expires_at"`
}

type sessionResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message" example:"Login successful"`
	Data    sessionData `json:"data"`
}

type meResponse struct {
	Success bool          `json:"success" example:"true"`
	Message string        `json:"message" example:"Session is valid"`
	Data    domain.Claims `json:"data"`
}

type accountResponse struct {
	Success bool                 `json:"success" example:"true"`
	Message string               `json:"message" example:"Role updated"`
	Data    domain.PublicAccount `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
}
