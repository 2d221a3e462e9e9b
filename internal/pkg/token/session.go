// Package token issues and verifies HS256 session tokens and generates
// password-reset secrets.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cinefind/moviesearch/internal/core/domain"
)

// MinSecretLength is the shortest HS256 key accepted by NewSessionManager.
const MinSecretLength = 32

// Claims is the signed payload: the account id, email and role plus the
// registered claims (sub, iss, iat, exp, jti).
type Claims struct {
	jwt.RegisteredClaims
	AccountID string      `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
}

// SessionManager implements ports.SessionIssuer.
type SessionManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret, issuer string, ttl time.Duration) (*SessionManager, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token: secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a new token for account. Every call yields a distinct token.
func (m *SessionManager) Issue(account *domain.Account) (domain.SessionToken, error) {
	if account == nil || account.ID == "" {
		return domain.SessionToken{}, errors.New("token: account id is required")
	}

	now := m.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return domain.SessionToken{}, fmt.Errorf("token: sign: %w", err)
	}

	return domain.SessionToken{
		Value:     signed,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks signature, algorithm, issuer and expiry. Every failure is
// reported as domain.ErrInvalidSession.
func (m *SessionManager) Verify(raw string) (*domain.Claims, error) {
	if raw == "" {
		return nil, domain.ErrInvalidSession
	}

	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	tkn, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidSession
	}

	if claims.AccountID == "" || claims.Subject != claims.AccountID {
		return nil, domain.ErrInvalidSession
	}
	role, err := domain.ParseRole(string(claims.Role))
	if err != nil {
		return nil, domain.ErrInvalidSession
	}

	out := &domain.Claims{
		AccountID: claims.AccountID,
		Email:     claims.Email,
		Role:      role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
