package ports

import (
	"context"
	"time"

	"github.com/cinefind/moviesearch/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// Create inserts a new account. Returns domain.ErrConflict when the
	// normalized email is already taken.
	Create(ctx context.Context, account *domain.Account) error
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error
	UpdateRole(ctx context.Context, id string, role domain.Role, at time.Time) error
}

// ResetTokenRepository persists password-reset token fingerprints.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *domain.ResetToken) error

	// Consume marks the token with the given fingerprint as used, but only if
	// it is still unconsumed and unexpired at the given time. Returns
	// domain.ErrResetTokenInvalid for unknown or already consumed tokens and
	// domain.ErrResetTokenExpired for expired ones.
	Consume(ctx context.Context, tokenHash string, at time.Time) (*domain.ResetToken, error)

	// RevokeOutstanding consumes every open token of the account.
	RevokeOutstanding(ctx context.Context, accountID string, at time.Time) error

	// DeleteStale removes consumed tokens and tokens that expired at or before
	// the cutoff.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store is the root persistence collaborator. Drivers (mongo, postgres,
// sqlite) implement it.
type Store interface {
	Accounts() AccountRepository
	ResetTokens() ResetTokenRepository

	// WithTx runs fn inside a transaction. The Store handed to fn is bound to
	// the transaction, as is ctx. If fn returns an error everything it wrote
	// is rolled back.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	Ping(ctx context.Context) error
}
