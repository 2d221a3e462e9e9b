package ports

import (
	"context"

	"github.com/cinefind/moviesearch/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to Register.
type RegisterInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72,maxbytes=72,password"`
}

// SessionResult is returned by Register and Authenticate.
type SessionResult struct {
	Account domain.PublicAccount
	Session domain.SessionToken
}

// AccountService defines the account use cases.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*SessionResult, error)
	Authenticate(ctx context.Context, email, password string) (*SessionResult, error)
	VerifySession(ctx context.Context, token string) (*domain.Claims, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	ChangeRole(ctx context.Context, accountID string, role domain.Role) (*domain.PublicAccount, error)
}
