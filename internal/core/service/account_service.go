package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinefind/moviesearch/internal/core/domain"
	"github.com/cinefind/moviesearch/internal/core/ports"
	"github.com/cinefind/moviesearch/internal/pkg/idx"
	"github.com/cinefind/moviesearch/internal/pkg/token"
	"github.com/cinefind/moviesearch/internal/pkg/validation"
)

const defaultResetTTL = 30 * time.Minute

// dummyPassword feeds the hash compared against unknown emails.
const dummyPassword = "Dummy-password-1!"

type confirmInput struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72,maxbytes=72,password"`
}

// AccountService implements registration, login, session verification and
// the password reset lifecycle.
type AccountService struct {
	store    ports.Store
	hasher   ports.PasswordHasher
	sessions ports.SessionIssuer
	notifier ports.ResetNotifier
	validate *validation.Validator
	resetTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(
	store ports.Store,
	hasher ports.PasswordHasher,
	sessions ports.SessionIssuer,
	notifier ports.ResetNotifier,
	resetTTL time.Duration,
	log zerolog.Logger,
) *AccountService {
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	return &AccountService{
		store:    store,
		hasher:   hasher,
		sessions: sessions,
		notifier: notifier,
		validate: validation.New(),
		resetTTL: resetTTL,
		log:      log.With().Str("component", "account_service").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AccountService) Register(ctx context.Context, input ports.RegisterInput) (*ports.SessionResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = domain.NormalizeEmail(input.Email)
	if err := s.validate.Validate(&input); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	account := &domain.Account{
		ID:           idx.NewAt(now),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Accounts().Create(ctx, account); err != nil {
		return nil, err
	}

	session, err := s.sessions.Issue(account)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", account.ID).Msg("account registered")
	return &ports.SessionResult{Account: account.Public(), Session: session}, nil
}

func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*ports.SessionResult, error) {
	email = domain.NormalizeEmail(email)
	if err := s.credentialShape(email, password); err != nil {
		return nil, err
	}

	account, err := s.store.Accounts().FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		_ = s.hasher.Verify(password, s.dummy())
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Verify(password, account.PasswordHash); err != nil {
		s.log.Debug().Str("account_id", account.ID).Err(err).Msg("password verification failed")
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.sessions.Issue(account)
	if err != nil {
		return nil, err
	}
	return &ports.SessionResult{Account: account.Public(), Session: session}, nil
}

// VerifySession checks a bearer token without consulting the store.
func (s *AccountService) VerifySession(_ context.Context, raw string) (*domain.Claims, error) {
	return s.sessions.Verify(raw)
}

// RequestPasswordReset issues a reset token when email belongs to an account
// and returns nil either way.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if err := s.validate.Field("email", email, "required,email,max=254"); err != nil {
		return err
	}

	account, err := s.store.Accounts().FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		s.log.Debug().Msg("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	raw, fingerprint, err := token.NewResetToken()
	if err != nil {
		return err
	}

	now := s.now()
	reset := &domain.ResetToken{
		ID:        idx.NewAt(now),
		AccountID: account.ID,
		TokenHash: fingerprint,
		ExpiresAt: now.Add(s.resetTTL),
		CreatedAt: now,
	}
	err = s.store.WithTx(ctx, func(ctx context.Context, tx ports.Store) error {
		if err := tx.ResetTokens().RevokeOutstanding(ctx, account.ID, now); err != nil {
			return err
		}
		return tx.ResetTokens().Create(ctx, reset)
	})
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	delivery := domain.ResetDelivery{
		AccountID: account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Token:     raw,
		ExpiresAt: reset.ExpiresAt,
	}
	if err := s.notifier.SendPasswordReset(ctx, delivery); err != nil {
		return fmt.Errorf("deliver reset token: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Time("expires_at", reset.ExpiresAt).Msg("password reset issued")
	return nil
}

// ConfirmPasswordReset consumes the token and replaces the password hash in
// one transaction.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, raw, newPassword string) error {
	input := confirmInput{Token: strings.TrimSpace(raw), NewPassword: newPassword}
	if err := s.validate.Validate(&input); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	fingerprint := token.Fingerprint(input.Token)

	var accountID string
	err = s.store.WithTx(ctx, func(ctx context.Context, tx ports.Store) error {
		consumed, err := tx.ResetTokens().Consume(ctx, fingerprint, now)
		if err != nil {
			return err
		}
		accountID = consumed.AccountID
		return tx.Accounts().UpdatePasswordHash(ctx, consumed.AccountID, hash, now)
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("account_id", accountID).Msg("password reset confirmed")
	return nil
}

// ChangeRole sets the role of an existing account.
func (s *AccountService) ChangeRole(ctx context.Context, accountID string, role domain.Role) (*domain.PublicAccount, error) {
	role, err := domain.ParseRole(string(role))
	if err != nil {
		return nil, err
	}
	if _, err := idx.Parse(accountID); err != nil {
		return nil, domain.ErrAccountNotFound
	}

	if err := s.store.Accounts().UpdateRole(ctx, accountID, role, s.now()); err != nil {
		return nil, err
	}
	account, err := s.store.Accounts().FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", accountID).Str("role", string(role)).Msg("account role changed")
	pub := account.Public()
	return &pub, nil
}

func (s *AccountService) credentialShape(email, password string) error {
	fields := map[string]string{}
	if err := s.validate.Field("email", email, "required,email"); err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		fields["email"] = ve.Fields["email"]
	}
	if password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (s *AccountService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Error().Err(err).Msg("compute dummy hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
