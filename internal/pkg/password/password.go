// Package password hashes and verifies account passwords. New hashes use the
// configured algorithm; verification accepts any supported encoding so stored
// hashes keep working after the algorithm changes.
package password

import (
	"errors"
	"fmt"
	"strings"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// ErrMismatch is returned by Verify when the password does not match.
var ErrMismatch = errors.New("password does not match")

// ErrUnknownFormat is returned by Verify for hashes no scheme recognizes.
var ErrUnknownFormat = errors.New("password: unrecognized hash format")

type scheme interface {
	hash(password string) (string, error)
	verify(password, encoded string) error
	owns(encoded string) bool
}

// Hasher implements ports.PasswordHasher.
type Hasher struct {
	preferred scheme
	schemes   []scheme
}

// New returns a Hasher that produces hashes with algorithm. bcryptCost only
// applies to bcrypt and falls back to bcrypt.DefaultCost when out of range.
func New(algorithm string, bcryptCost int) (*Hasher, error) {
	b := newBcrypt(bcryptCost)
	a := argon2id{}

	h := &Hasher{schemes: []scheme{a, b}}
	switch strings.ToLower(algorithm) {
	case "", AlgorithmBcrypt:
		h.preferred = b
	case AlgorithmArgon2id:
		h.preferred = a
	default:
		return nil, fmt.Errorf("password: unknown algorithm %q", algorithm)
	}
	return h, nil
}

func (h *Hasher) Hash(password string) (string, error) {
	return h.preferred.hash(password)
}

func (h *Hasher) Verify(password, encoded string) error {
	for _, s := range h.schemes {
		if s.owns(encoded) {
			return s.verify(password, encoded)
		}
	}
	return ErrUnknownFormat
}
