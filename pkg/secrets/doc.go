// Package secrets encrypts values the storefront client keeps in durable
// storage, most importantly the bearer token and the cached identity.
//
// A Cipher is derived once from two 32-byte keys with HKDF-SHA256
// (golang.org/x/crypto/hkdf): an application key shipped with the build and a
// device key generated on first start. Values are sealed with AES-256-GCM; the
// random nonce is prepended to the ciphertext and the result is base64 encoded
// so it fits string-valued stores. An optional associated-data argument binds a
// ciphertext to the storage key it was written under, so a value copied to a
// different key fails to open.
//
//	c, err := secrets.NewCipher(appKey, deviceKey)
//	sealed, err := c.EncryptString("token", rawToken)
//	plain, err := c.DecryptString("token", sealed)
package secrets
