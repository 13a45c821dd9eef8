package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pepper   string
		password string
		attempt  string
		want     bool
	}{
		{name: "match", password: "s3cret", attempt: "s3cret", want: true},
		{name: "mismatch", password: "s3cret", attempt: "secret", want: false},
		{name: "match with pepper", pepper: "pep", password: "s3cret", attempt: "s3cret", want: true},
		{name: "empty attempt", password: "s3cret", attempt: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewBcrypt(bcrypt.MinCost, tt.pepper)
			hashed, err := h.Hash(tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.Verify(string(hashed), tt.attempt))
		})
	}
}

func TestNewBcrypt_CostFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0, "").cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(99, "").cost)
	assert.Equal(t, bcrypt.MinCost, NewBcrypt(bcrypt.MinCost, "").cost)
}

func TestBcrypt_VerifyMalformedHash(t *testing.T) {
	t.Parallel()

	assert.False(t, NewBcrypt(bcrypt.MinCost, "").Verify("not-a-hash", "x"))
}
