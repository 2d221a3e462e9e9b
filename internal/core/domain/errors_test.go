package domain

import (
	"errors"
	"testing"
)

func TestAuthenticationErrorsShareRoot(t *testing.T) {
	for _, err := range []error{ErrInvalidCredentials, ErrInvalidSession, ErrTokenRevoked} {
		if !errors.Is(err, ErrAuthentication) {
			t.Fatalf("%v does not wrap ErrAuthentication", err)
		}
	}
	if errors.Is(ErrResetTokenExpired, ErrAuthentication) {
		t.Fatalf("reset token errors must not be authentication errors")
	}
	if !errors.Is(ErrResetTokenExpired, ErrToken) || !errors.Is(ErrResetTokenInvalid, ErrToken) {
		t.Fatalf("reset token errors must wrap ErrToken")
	}
}

func TestValidationError_MessageIsStable(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"password": "password is too weak",
		"email":    "email must be a valid email",
	}}

	want := "validation failed: email must be a valid email; password is too weak"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}

	var ve *ValidationError
	if !errors.As(error(err), &ve) {
		t.Fatalf("errors.As failed")
	}
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{"admin": RoleAdmin, " USER ": RoleUser, "Admin": RoleAdmin}
	for in, want := range cases {
		got, err := ParseRole(in)
		if err != nil || got != want {
			t.Fatalf("ParseRole(%q) = %q, %v", in, got, err)
		}
	}

	_, err := ParseRole("root")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields["role"] == "" {
		t.Fatalf("expected role validation error, got %v", err)
	}
}

func TestClaims_HasRole(t *testing.T) {
	c := &Claims{Role: RoleUser}
	if !c.HasRole(RoleAdmin, RoleUser) {
		t.Fatalf("expected USER to be allowed")
	}
	if c.HasRole(RoleAdmin) {
		t.Fatalf("expected USER to be denied for ADMIN-only set")
	}
	var nilClaims *Claims
	if nilClaims.HasRole(RoleUser) {
		t.Fatalf("nil claims must never match")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ann@X.Com "); got != "ann@x.com" {
		t.Fatalf("got %q", got)
	}
}
