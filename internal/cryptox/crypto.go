// Package cryptox encrypts provider credentials before they are written to
// the database.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/nobs/internal/common"
	"golang.org/x/crypto/hkdf"
)

const keyInfo = "nobs/orcid-token-encryption/v1"

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// TokenCipher seals short strings with AES-256-GCM. The key is derived from
// the server secret with HKDF-SHA256 so the JWT signing key is never used for
// encryption directly.
type TokenCipher struct {
	aead cipher.AEAD
}

// DeriveKey expands secret into a 32-byte AES key.
func DeriveKey(secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty secret")
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, secret, nil, []byte(keyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

func NewTokenCipher(secret []byte) (*TokenCipher, error) {
	key, err := DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &TokenCipher{aead: aead}, nil
}

// Encrypt returns base64(nonce || ciphertext). The empty string stays empty
// so that absent tokens remain NULL in the database.
func (c *TokenCipher) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Tampered or foreign input yields an error.
func (c *TokenCipher) Decrypt(enc string) (string, error) {
	if enc == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", ErrCiphertextTooShort
	}

	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	return string(plain), nil
}

// EncryptPtr is Encrypt for nullable columns.
func (c *TokenCipher) EncryptPtr(plain *string) (*string, error) {
	if plain == nil || *plain == "" {
		return nil, nil
	}
	enc, err := c.Encrypt(*plain)
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

// DecryptPtr is Decrypt for nullable columns.
func (c *TokenCipher) DecryptPtr(enc *string) (*string, error) {
	if enc == nil || *enc == "" {
		return nil, nil
	}
	plain, err := c.Decrypt(*enc)
	if err != nil {
		return nil, err
	}
	return &plain, nil
}
