package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// Cipher seals and opens values with a key derived from an app and a device key.
// It is safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives the compound key and prepares AES-256-GCM.
func NewCipher(appKey, deviceKey []byte) (*Cipher, error) {
	if err := validateKeys(appKey, deviceKey); err != nil {
		return nil, err
	}

	key, err := deriveKey(appKey, deviceKey)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt returns nonce || ciphertext || tag. ad is authenticated, not encrypted.
func (c *Cipher) Encrypt(ad string, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, []byte(ad)), nil
}

// Decrypt reverses Encrypt. The same ad must be supplied.
func (c *Cipher) Decrypt(ad string, sealed []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize+c.aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, []byte(ad))
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// EncryptString is Encrypt with base64 output.
func (c *Cipher) EncryptString(ad, plaintext string) (string, error) {
	sealed, err := c.Encrypt(ad, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString is Decrypt for base64 input.
func (c *Cipher) DecryptString(ad, sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}

	plaintext, err := c.Decrypt(ad, raw)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
