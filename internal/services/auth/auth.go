package auth

import (
	"errors"
	"sync"

	"onmodulus/xervo/internal/util"
)

const ServiceName = "xervo"

var ErrTokenNotFound = errors.New("auth token not found")

// Store persists API tokens keyed by account username.
type Store interface {
	SetToken(username string, token string) error
	GetToken(username string) (string, error)
	DeleteToken(username string) error
}

var (
	mu            sync.RWMutex
	storeOverride Store
)

// DefaultStore returns the standard auth store backed by the OS keychain,
// or the store installed with SetDefaultStore.
func DefaultStore() Store {
	mu.RLock()
	defer mu.RUnlock()
	if storeOverride != nil {
		return storeOverride
	}
	return NewKeyringStore(ServiceName)
}

// SetDefaultStore replaces the store returned by DefaultStore. Intended for testing.
func SetDefaultStore(s Store) {
	mu.Lock()
	storeOverride = s
	mu.Unlock()
}

// ResetDefaultStore reverts DefaultStore to the OS keychain. Intended for testing.
func ResetDefaultStore() {
	SetDefaultStore(nil)
}

// NormalizeUsername normalizes a username for consistent key lookup.
func NormalizeUsername(username string) string {
	return util.NormalizeKey(username)
}
