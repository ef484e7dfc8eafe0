package encrypt

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageHash(t *testing.T) {
	a := MessageHash([]byte("hello"))
	b := MessageHash([]byte("hello"))
	c := MessageHash([]byte("hello!"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	// 32 bytes -> 43 chars without padding
	assert.Len(t, a, 43)
}

func TestSignDeleteContent(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)

	members := []string{"05aa"}
	hashes := []string{"h1", "h2"}

	sig, err := SignDeleteContent(seed, 1700000000000, members, hashes)
	require.NoError(t, err)
	assert.NoError(t, VerifyDeleteContent(pub, sig, 1700000000000, members, hashes))

	// full 64 byte key signs the same way
	sig64, err := SignDeleteContent(ed25519.NewKeyFromSeed(seed), 1700000000000, members, hashes)
	require.NoError(t, err)
	assert.Equal(t, sig, sig64)

	assert.ErrorIs(t, VerifyDeleteContent(pub, sig, 1700000000001, members, hashes), ErrBadSignature)
	assert.ErrorIs(t, VerifyDeleteContent(pub, sig, 1700000000000, members, []string{"h1"}), ErrBadSignature)
}

func TestSignDeleteContent_BadKey(t *testing.T) {
	_, err := SignDeleteContent([]byte("short"), 1, nil, nil)
	assert.ErrorIs(t, err, ErrBadSecretKey)
}
