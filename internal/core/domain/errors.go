package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrAuthentication is the root of every credential or session failure. Its
// message never says which part of the credentials was wrong.
var ErrAuthentication = errors.New("authentication failed")

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	ErrInvalidSession     = fmt.Errorf("%w: invalid or expired session", ErrAuthentication)
	ErrTokenRevoked       = fmt.Errorf("%w: session has been revoked", ErrAuthentication)
)

// ErrToken is the root of every password-reset token failure.
var ErrToken = errors.New("reset token rejected")

var (
	ErrResetTokenInvalid = fmt.Errorf("%w: invalid or already used", ErrToken)
	ErrResetTokenExpired = fmt.Errorf("%w: expired", ErrToken)
)

var ErrConflict = errors.New("account already exists")
var ErrAccountNotFound = errors.New("account not found")
var ErrForbidden = errors.New("access forbidden")

// ValidationError carries one message per rejected input field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
