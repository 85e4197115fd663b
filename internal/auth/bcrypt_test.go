package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "userauth/internal/errors"
)

func newTestHasher(t *testing.T, cost int) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(cost)
	require.NoError(t, err)
	return h
}

func TestNewBcryptHasher_RejectsOutOfRangeCost(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)

	_, err = NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher(t, bcrypt.MinCost)

	digest, err := h.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", digest)
	assert.True(t, h.Verify("secret123", digest))
	assert.False(t, h.Verify("secret124", digest))
	assert.False(t, h.Verify("", digest))
}

func TestBcryptHasher_FreshSaltPerCall(t *testing.T) {
	h := newTestHasher(t, bcrypt.MinCost)

	first, err := h.Hash("secret123")
	require.NoError(t, err)
	second, err := h.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("secret123", first))
	assert.True(t, h.Verify("secret123", second))
}

func TestBcryptHasher_VerifyMalformedDigest(t *testing.T) {
	h := newTestHasher(t, bcrypt.MinCost)

	assert.False(t, h.Verify("secret123", ""))
	assert.False(t, h.Verify("secret123", "not-a-bcrypt-digest"))
	assert.False(t, h.Verify("secret123", "secret123"))
}

func TestBcryptHasher_RaisingCostKeepsOldDigestsValid(t *testing.T) {
	low := newTestHasher(t, bcrypt.MinCost)
	high := newTestHasher(t, bcrypt.MinCost+1)

	digest, err := low.Hash("secret123")
	require.NoError(t, err)

	assert.True(t, high.Verify("secret123", digest))
	assert.True(t, high.NeedsRehash(digest))
	assert.False(t, low.NeedsRehash(digest))
	assert.False(t, high.NeedsRehash("garbage"))

	upgraded, err := high.Hash("secret123")
	require.NoError(t, err)
	assert.False(t, high.NeedsRehash(upgraded))
}

func TestBcryptHasher_PasswordTooLong(t *testing.T) {
	h := newTestHasher(t, bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}
