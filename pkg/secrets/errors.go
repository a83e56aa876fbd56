package secrets

import "errors"

var (
	ErrInvalidAppKey    = errors.New("invalid app key: must be 32 bytes")
	ErrInvalidDeviceKey = errors.New("invalid device key: must be 32 bytes")
	ErrInvalidKeyFormat = errors.New("invalid key encoding: expected base64")

	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")

	ErrKeyDerivationFailed = errors.New("key derivation failed")
)
