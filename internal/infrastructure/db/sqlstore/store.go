// Package sqlstore implements ports.Store over database/sql. Driver packages
// (postgres, sqlite) open the connection, run migrations and supply a Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/cinefind/moviesearch/internal/core/ports"
)

// DBTX is the subset of database/sql used by the repositories. Both *sql.DB
// and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect carries the driver-specific bits.
type Dialect struct {
	Name string
	// Numbered rewrites "?" placeholders to "$1", "$2", ...
	Numbered bool
	// IsUniqueViolation reports whether err came from a unique constraint.
	IsUniqueViolation func(err error) bool
}

func (d Dialect) rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) unique(err error) bool {
	return d.IsUniqueViolation != nil && d.IsUniqueViolation(err)
}

type Store struct {
	db      *sql.DB
	q       DBTX
	dialect Dialect
	inTx    bool
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, q: db, dialect: dialect}
}

func (s *Store) Accounts() ports.AccountRepository {
	return &accountRepo{q: s.q, d: s.dialect}
}

func (s *Store) ResetTokens() ports.ResetTokenRepository {
	return &resetTokenRepo{q: s.q, d: s.dialect}
}

// WithTx commits when fn returns nil and rolls back otherwise. Calls made on
// a transaction-bound Store join the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) (err error) {
	if s.inTx {
		return fn(ctx, s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, &Store{db: s.db, q: tx, dialect: s.dialect, inTx: true})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func fromNullMillis(ms sql.NullInt64) *time.Time {
	if !ms.Valid {
		return nil
	}
	t := fromMillis(ms.Int64)
	return &t
}
