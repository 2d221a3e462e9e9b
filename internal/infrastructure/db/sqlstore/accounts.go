package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cinefind/moviesearch/internal/core/domain"
)

const accountColumns = `id, name, email, password_hash, role, created_at, updated_at`

type accountRepo struct {
	q DBTX
	d Dialect
}

func (r *accountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, r.d.rebind(query),
		a.ID, a.Name, a.Email, a.PasswordHash, string(a.Role), millis(a.CreatedAt), millis(a.UpdatedAt))
	if err != nil {
		if r.d.unique(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *accountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`
	return r.scanOne(r.q.QueryRowContext(ctx, r.d.rebind(query), email))
}

func (r *accountRepo) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	return r.scanOne(r.q.QueryRowContext(ctx, r.d.rebind(query), id))
}

func (r *accountRepo) UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error {
	query := `UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`
	return r.updateOne(ctx, "update password hash", query, hash, millis(at), id)
}

func (r *accountRepo) UpdateRole(ctx context.Context, id string, role domain.Role, at time.Time) error {
	query := `UPDATE accounts SET role = ?, updated_at = ? WHERE id = ?`
	return r.updateOne(ctx, "update role", query, string(role), millis(at), id)
}

func (r *accountRepo) updateOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.q.ExecContext(ctx, r.d.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepo) scanOne(row *sql.Row) (*domain.Account, error) {
	var (
		a                    domain.Account
		role                 string
		createdAt, updatedAt int64
	)
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &role, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.Role = domain.Role(role)
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return &a, nil
}
