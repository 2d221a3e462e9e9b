package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cinefind/moviesearch/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newManager(t *testing.T, ttl time.Duration) *SessionManager {
	t.Helper()
	m, err := NewSessionManager(testSecret, "moviesearch", ttl)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return m
}

func testAccount() *domain.Account {
	return &domain.Account{ID: "01JA0000000000000000000000", Email: "ann@x.com", Role: domain.RoleUser}
}

func TestNewSessionManager_ShortSecret(t *testing.T) {
	if _, err := NewSessionManager("short", "moviesearch", time.Hour); err == nil {
		t.Fatalf("expected error for short secret")
	}
}

func TestIssueAndVerify(t *testing.T) {
	m := newManager(t, time.Hour)

	tok, err := m.Issue(testAccount())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok.Value == "" || tok.TokenID == "" {
		t.Fatalf("incomplete token: %+v", tok)
	}

	claims, err := m.Verify(tok.Value)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.AccountID != "01JA0000000000000000000000" || claims.Email != "ann@x.com" || claims.Role != domain.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TokenID != tok.TokenID {
		t.Fatalf("token id mismatch: %q vs %q", claims.TokenID, tok.TokenID)
	}
}

func TestIssue_DistinctTokens(t *testing.T) {
	m := newManager(t, time.Hour)
	a, _ := m.Issue(testAccount())
	b, _ := m.Issue(testAccount())
	if a.Value == b.Value {
		t.Fatalf("expected distinct tokens")
	}
}

func TestVerify_Expired(t *testing.T) {
	m := newManager(t, time.Minute)
	tok, err := m.Issue(testAccount())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := m.Verify(tok.Value); err != domain.ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestVerify_Tampered(t *testing.T) {
	m := newManager(t, time.Hour)
	tok, _ := m.Issue(testAccount())

	parts := strings.Split(tok.Value, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	for _, raw := range []string{"", "garbage", tampered} {
		if _, err := m.Verify(raw); err != domain.ErrInvalidSession {
			t.Fatalf("Verify(%q): expected ErrInvalidSession, got %v", raw, err)
		}
	}
}

func TestVerify_WrongSecretOrIssuer(t *testing.T) {
	m := newManager(t, time.Hour)
	tok, _ := m.Issue(testAccount())

	other, _ := NewSessionManager(strings.Repeat("z", 32), "moviesearch", time.Hour)
	if _, err := other.Verify(tok.Value); err != domain.ErrInvalidSession {
		t.Fatalf("wrong secret: expected ErrInvalidSession, got %v", err)
	}

	foreign, _ := NewSessionManager(testSecret, "someone-else", time.Hour)
	if _, err := foreign.Verify(tok.Value); err != domain.ErrInvalidSession {
		t.Fatalf("wrong issuer: expected ErrInvalidSession, got %v", err)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	m := newManager(t, time.Hour)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acc",
			Issuer:    "moviesearch",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		AccountID: "acc",
		Role:      domain.RoleAdmin,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := m.Verify(raw); err != domain.ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestVerify_UnknownRole(t *testing.T) {
	m := newManager(t, time.Hour)
	acc := testAccount()
	acc.Role = "ROOT"
	tok, err := m.Issue(acc)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Verify(tok.Value); err != domain.ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}
