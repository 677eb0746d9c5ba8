package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcrypt(4) // min cost keeps the test fast

	hash, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, h.Verify("correct horse battery staple", hash))
	assert.False(t, h.Verify("wrong password", hash))
}

func TestBcryptHasher_DistinctPasswords(t *testing.T) {
	h := NewBcrypt(4)

	hash1, err := h.Hash("password-one")
	require.NoError(t, err)
	hash2, err := h.Hash("password-two")
	require.NoError(t, err)

	assert.False(t, h.Verify("password-one", hash2))
	assert.False(t, h.Verify("password-two", hash1))
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewBcrypt(4)

	hash1, err := h.Hash("same password")
	require.NoError(t, err)
	hash2, err := h.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
	assert.True(t, h.Verify("same password", hash1))
	assert.True(t, h.Verify("same password", hash2))
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := NewBcrypt(4)

	assert.False(t, h.Verify("anything", ""))
	assert.False(t, h.Verify("anything", "not-a-bcrypt-hash"))
}

func TestNewBcrypt_CostOutOfRange(t *testing.T) {
	// Out-of-range costs fall back to the default instead of failing later.
	h := NewBcrypt(999)

	hash, err := h.Hash("pw")
	require.NoError(t, err)
	assert.True(t, h.Verify("pw", hash))
}
