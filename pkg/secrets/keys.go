package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required size for both keys (AES-256).
	KeySize = 32

	hkdfInfo = "storefront-secrets-v1"
)

// GenerateKey returns KeySize random bytes.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

// EncodeKey returns the base64 form used in configuration.
func EncodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// ParseKey decodes a base64 key as produced by EncodeKey.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Join(ErrInvalidKeyFormat, err)
	}
	return key, nil
}

func validateKeys(appKey, deviceKey []byte) error {
	if len(appKey) != KeySize {
		return ErrInvalidAppKey
	}
	if len(deviceKey) != KeySize {
		return ErrInvalidDeviceKey
	}
	return nil
}

// deriveKey mixes the two keys with HKDF; the device key acts as salt.
func deriveKey(appKey, deviceKey []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, appKey, deviceKey, []byte(hkdfInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
