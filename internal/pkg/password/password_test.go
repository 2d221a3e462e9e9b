package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		prefix    string
	}{
		{"bcrypt", AlgorithmBcrypt, "$2a$"},
		{"argon2id", AlgorithmArgon2id, "$argon2id$v=19$"},
		{"default", "", "$2a$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(tt.algorithm, bcrypt.MinCost)
			require.NoError(t, err)

			hash, err := h.Hash("Abcdef1!")
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, tt.prefix), "unexpected encoding %q", hash)
			require.NotContains(t, hash, "Abcdef1!")

			require.NoError(t, h.Verify("Abcdef1!", hash))
			require.ErrorIs(t, h.Verify("Abcdef1?", hash), ErrMismatch)
		})
	}
}

func TestHasher_UniqueSalts(t *testing.T) {
	h, err := New(AlgorithmArgon2id, 0)
	require.NoError(t, err)

	a, err := h.Hash("samepassword")
	require.NoError(t, err)
	b, err := h.Hash("samepassword")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestHasher_VerifiesEitherEncoding(t *testing.T) {
	bc, err := New(AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	ar, err := New(AlgorithmArgon2id, 0)
	require.NoError(t, err)

	legacy, err := bc.Hash("Abcdef1!")
	require.NoError(t, err)
	require.NoError(t, ar.Verify("Abcdef1!", legacy))

	modern, err := ar.Hash("Abcdef1!")
	require.NoError(t, err)
	require.NoError(t, bc.Verify("Abcdef1!", modern))
}

func TestHasher_RejectsGarbage(t *testing.T) {
	h, err := New(AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)

	require.ErrorIs(t, h.Verify("x", "plaintext"), ErrUnknownFormat)
	require.ErrorIs(t, h.Verify("x", "$argon2id$v=19$broken"), ErrUnknownFormat)
}

func TestNew_UnknownAlgorithm(t *testing.T) {
	_, err := New("md5", 0)
	require.Error(t, err)
}
