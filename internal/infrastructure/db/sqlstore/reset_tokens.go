package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cinefind/moviesearch/internal/core/domain"
)

type resetTokenRepo struct {
	q DBTX
	d Dialect
}

func (r *resetTokenRepo) Create(ctx context.Context, t *domain.ResetToken) error {
	query := `INSERT INTO password_reset_tokens (id, account_id, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, r.d.rebind(query),
		t.ID, t.AccountID, t.TokenHash, millis(t.ExpiresAt), millis(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

// Consume relies on the conditional update: of several concurrent callers
// only one sees consumed_at still NULL.
func (r *resetTokenRepo) Consume(ctx context.Context, tokenHash string, at time.Time) (*domain.ResetToken, error) {
	query := `UPDATE password_reset_tokens
		SET consumed_at = ?
		WHERE token_hash = ? AND consumed_at IS NULL AND expires_at > ?
		RETURNING id, account_id, expires_at, created_at`

	var (
		t                    = domain.ResetToken{TokenHash: tokenHash}
		expiresAt, createdAt int64
	)
	err := r.q.QueryRowContext(ctx, r.d.rebind(query), millis(at), tokenHash, millis(at)).
		Scan(&t.ID, &t.AccountID, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.rejection(ctx, tokenHash, at)
	}
	if err != nil {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}

	consumedAt := fromMillis(millis(at))
	t.ConsumedAt = &consumedAt
	t.ExpiresAt = fromMillis(expiresAt)
	t.CreatedAt = fromMillis(createdAt)
	return &t, nil
}

// rejection classifies a token the conditional update did not match.
func (r *resetTokenRepo) rejection(ctx context.Context, tokenHash string, at time.Time) error {
	query := `SELECT expires_at, consumed_at FROM password_reset_tokens WHERE token_hash = ?`

	var (
		expiresAt  int64
		consumedAt sql.NullInt64
	)
	err := r.q.QueryRowContext(ctx, r.d.rebind(query), tokenHash).Scan(&expiresAt, &consumedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrResetTokenInvalid
	case err != nil:
		return fmt.Errorf("lookup reset token: %w", err)
	case consumedAt.Valid:
		return domain.ErrResetTokenInvalid
	case expiresAt <= millis(at):
		return domain.ErrResetTokenExpired
	default:
		return domain.ErrResetTokenInvalid
	}
}

func (r *resetTokenRepo) RevokeOutstanding(ctx context.Context, accountID string, at time.Time) error {
	query := `UPDATE password_reset_tokens SET consumed_at = ?
		WHERE account_id = ? AND consumed_at IS NULL`

	if _, err := r.q.ExecContext(ctx, r.d.rebind(query), millis(at), accountID); err != nil {
		return fmt.Errorf("revoke reset tokens: %w", err)
	}
	return nil
}

func (r *resetTokenRepo) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM password_reset_tokens
		WHERE consumed_at IS NOT NULL OR expires_at <= ?`

	res, err := r.q.ExecContext(ctx, r.d.rebind(query), millis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete stale reset tokens: %w", err)
	}
	return res.RowsAffected()
}
