package ports

import (
	"context"
	"time"

	"github.com/cinefind/moviesearch/internal/core/domain"
)

// PasswordHasher abstracts the one-way password transformation.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns nil only when password matches hash.
	Verify(password, hash string) error
}

// SessionIssuer signs and verifies session tokens.
type SessionIssuer interface {
	Issue(account *domain.Account) (domain.SessionToken, error)
	Verify(token string) (*domain.Claims, error)
}

// ResetNotifier hands a freshly issued reset token to the account owner.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, delivery domain.ResetDelivery) error
}

// RevocationList is the denylist consulted after a session token verifies.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
