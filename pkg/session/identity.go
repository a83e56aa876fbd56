package session

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrymomot/storefront/pkg/storage"
)

// Storage keys shared with earlier clients of the same backend.
const (
	KeyToken       = "token"
	KeyUser        = "user"
	KeyAgeVerified = "ageVerified"
)

const gateAccepted = "true"

// Identity is the signed-in user.
type Identity struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func (i Identity) encode() (string, error) {
	raw, err := json.Marshal(i)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeIdentity(raw string) (Identity, error) {
	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return Identity{}, fmt.Errorf("%w: %w", storage.ErrCorrupted, err)
	}
	if id.ID == 0 {
		return Identity{}, fmt.Errorf("%w: identity without id", storage.ErrCorrupted)
	}
	return id, nil
}
