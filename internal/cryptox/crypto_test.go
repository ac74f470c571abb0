package cryptox

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	k1, err := DeriveKey([]byte("secretKey"))
	require.NoError(t, err)
	k2, err := DeriveKey([]byte("secretKey"))
	require.NoError(t, err)
	k3, err := DeriveKey([]byte("otherKey"))
	require.NoError(t, err)

	assert.Len(t, k1, 32)
	assert.True(t, bytes.Equal(k1, k2))
	assert.False(t, bytes.Equal(k1, k3))
}

func TestDeriveKey_EmptySecret(t *testing.T) {
	_, err := DeriveKey(nil)
	require.Error(t, err)

	_, err = NewTokenCipher([]byte{})
	require.Error(t, err)
}

func TestTokenCipher_RoundTrip(t *testing.T) {
	c, err := NewTokenCipher([]byte("secretKey"))
	require.NoError(t, err)

	enc, err := c.Encrypt("orcid-access-token")
	require.NoError(t, err)
	assert.NotEqual(t, "orcid-access-token", enc)

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "orcid-access-token", dec)
}

func TestTokenCipher_NonceIsRandom(t *testing.T) {
	c, err := NewTokenCipher([]byte("secretKey"))
	require.NoError(t, err)

	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenCipher_EmptyStaysEmpty(t *testing.T) {
	c, err := NewTokenCipher([]byte("secretKey"))
	require.NoError(t, err)

	enc, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, enc)

	dec, err := c.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, dec)
}

func TestTokenCipher_WrongKeyFails(t *testing.T) {
	c1, _ := NewTokenCipher([]byte("key-one"))
	c2, _ := NewTokenCipher([]byte("key-two"))

	enc, err := c1.Encrypt("value")
	require.NoError(t, err)

	_, err = c2.Decrypt(enc)
	require.Error(t, err)
}

func TestTokenCipher_Tampered(t *testing.T) {
	c, _ := NewTokenCipher([]byte("secretKey"))
	enc, err := c.Encrypt("value")
	require.NoError(t, err)

	raw, _ := base64.StdEncoding.DecodeString(enc)
	raw[len(raw)-1] ^= 0xFF
	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(raw))
	require.Error(t, err)

	_, err = c.Decrypt("!!not-base64!!")
	require.Error(t, err)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString([]byte("short")))
	require.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestTokenCipher_Pointers(t *testing.T) {
	c, _ := NewTokenCipher([]byte("secretKey"))

	enc, err := c.EncryptPtr(nil)
	require.NoError(t, err)
	assert.Nil(t, enc)

	empty := ""
	enc, err = c.EncryptPtr(&empty)
	require.NoError(t, err)
	assert.Nil(t, enc)

	v := "refresh"
	enc, err = c.EncryptPtr(&v)
	require.NoError(t, err)
	require.NotNil(t, enc)

	dec, err := c.DecryptPtr(enc)
	require.NoError(t, err)
	require.NotNil(t, dec)
	assert.Equal(t, "refresh", *dec)

	dec, err = c.DecryptPtr(nil)
	require.NoError(t, err)
	assert.Nil(t, dec)
}
