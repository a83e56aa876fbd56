// Package storage is the durable client-side key/value store the session
// state is persisted in: the bearer token, the identity JSON and the
// content-gate flag each live under their own key and are read once at start.
//
// Storage is deliberately tiny (Get, Set, Delete on string values) so that
// several backends fit behind it:
//
//   - MemoryStorage keeps values for the lifetime of the process (tests,
//     ephemeral kiosks).
//   - FileStorage keeps a JSON document on disk, rewritten atomically.
//   - RedisStorage keeps values in Redis under a per-device prefix, for
//     deployments where several client processes share one profile.
//   - EncryptedStorage decorates any of the above and seals values with
//     pkg/secrets before they reach the backend.
//
// Missing keys are reported with ErrNotFound so callers can tell "absent" from
// "empty string".
package storage
