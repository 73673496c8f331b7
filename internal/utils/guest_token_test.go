package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef" // 16 bytes

func TestGuestIDRoundTrip(t *testing.T) {
	enc, err := EncryptGuestID("guest-42", testKey)
	require.NoError(t, err)
	require.NotEmpty(t, enc)
	assert.NotContains(t, enc, "guest-42")

	dec, err := DecryptGuestID(enc, testKey)
	require.NoError(t, err)
	assert.Equal(t, "guest-42", dec)
}

func TestEncryptGuestIDRandomIV(t *testing.T) {
	a, err := EncryptGuestID("guest-42", testKey)
	require.NoError(t, err)
	b, err := EncryptGuestID("guest-42", testKey)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGuestIDKeyValidation(t *testing.T) {
	_, err := EncryptGuestID("guest-42", "short")
	assert.Error(t, err)

	_, err = EncryptGuestID("", testKey)
	assert.Error(t, err)

	enc, err := EncryptGuestID("guest-42", testKey)
	require.NoError(t, err)
	_, err = DecryptGuestID(enc, "short")
	assert.Error(t, err)
}

func TestDecryptGuestIDRejectsGarbage(t *testing.T) {
	_, err := DecryptGuestID("not base64 at all!!!", testKey)
	assert.Error(t, err)

	_, err = DecryptGuestID("AAAA", testKey) // shorter than one block
	assert.Error(t, err)
}
