package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cinefind/moviesearch/internal/core/domain"
	"github.com/cinefind/moviesearch/internal/core/ports"
	"github.com/cinefind/moviesearch/internal/pkg/password"
	"github.com/cinefind/moviesearch/internal/pkg/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// memStore is an in-memory ports.Store. Transactions are serialized and roll
// back by restoring a snapshot.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	accounts map[string]*domain.Account
	tokens   map[string]*domain.ResetToken

	failPasswordUpdate error
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]*domain.Account),
		tokens:   make(map[string]*domain.ResetToken),
	}
}

func (s *memStore) Accounts() ports.AccountRepository     { return memAccounts{s} }
func (s *memStore) ResetTokens() ports.ResetTokenRepository { return memTokens{s} }
func (s *memStore) Ping(context.Context) error              { return nil }

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	accounts := make(map[string]*domain.Account, len(s.accounts))
	for k, v := range s.accounts {
		clone := *v
		accounts[k] = &clone
	}
	tokens := make(map[string]*domain.ResetToken, len(s.tokens))
	for k, v := range s.tokens {
		clone := *v
		tokens[k] = &clone
	}
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.accounts, s.tokens = accounts, tokens
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) token(hash string) *domain.ResetToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[hash]; ok {
		clone := *t
		return &clone
	}
	return nil
}

type memAccounts struct{ s *memStore }

func (r memAccounts) Create(_ context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.accounts {
		if existing.Email == a.Email {
			return domain.ErrConflict
		}
	}
	clone := *a
	r.s.accounts[a.ID] = &clone
	return nil
}

func (r memAccounts) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r memAccounts) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r memAccounts) UpdatePasswordHash(_ context.Context, id, hash string, at time.Time) error {
	if r.s.failPasswordUpdate != nil {
		return r.s.failPasswordUpdate
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash, a.UpdatedAt = hash, at
	return nil
}

func (r memAccounts) UpdateRole(_ context.Context, id string, role domain.Role, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Role, a.UpdatedAt = role, at
	return nil
}

type memTokens struct{ s *memStore }

func (r memTokens) Create(_ context.Context, t *domain.ResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *t
	r.s.tokens[t.TokenHash] = &clone
	return nil
}

func (r memTokens) Consume(_ context.Context, hash string, at time.Time) (*domain.ResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[hash]
	if !ok || t.Consumed() {
		return nil, domain.ErrResetTokenInvalid
	}
	if t.Expired(at) {
		return nil, domain.ErrResetTokenExpired
	}
	consumedAt := at
	t.ConsumedAt = &consumedAt
	clone := *t
	return &clone, nil
}

func (r memTokens) RevokeOutstanding(_ context.Context, accountID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.AccountID == accountID && t.ConsumedAt == nil {
			consumedAt := at
			t.ConsumedAt = &consumedAt
		}
	}
	return nil
}

func (r memTokens) DeleteStale(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, t := range r.s.tokens {
		if t.Consumed() || t.Expired(cutoff) {
			delete(r.s.tokens, k)
			n++
		}
	}
	return n, nil
}

// captureNotifier records every reset delivery.
type captureNotifier struct {
	mu         sync.Mutex
	deliveries []domain.ResetDelivery
	err        error
}

func (n *captureNotifier) SendPasswordReset(_ context.Context, d domain.ResetDelivery) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.deliveries = append(n.deliveries, d)
	return nil
}

func (n *captureNotifier) last() (domain.ResetDelivery, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.deliveries) == 0 {
		return domain.ResetDelivery{}, false
	}
	return n.deliveries[len(n.deliveries)-1], true
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.deliveries)
}

type fixture struct {
	store    *memStore
	notifier *captureNotifier
	sessions *token.SessionManager
	svc      *AccountService
}

func newFixture(t interface {
	Helper()
	Fatalf(string, ...any)
}) *fixture {
	t.Helper()
	hasher, err := password.New(password.AlgorithmBcrypt, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("password.New: %v", err)
	}
	sessions, err := token.NewSessionManager(testSecret, "moviesearch", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	store := newMemStore()
	notifier := &captureNotifier{}
	return &fixture{
		store:    store,
		notifier: notifier,
		sessions: sessions,
		svc:      NewAccountService(store, hasher, sessions, notifier, 30*time.Minute, zerolog.Nop()),
	}
}
