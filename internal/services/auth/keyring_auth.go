package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

type KeyringStore struct {
	serviceName string
}

func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = ServiceName
	}
	return &KeyringStore{serviceName: serviceName}
}

func (k *KeyringStore) SetToken(username string, token string) error {
	return keyring.Set(k.serviceName, NormalizeUsername(username), token)
}

func (k *KeyringStore) GetToken(username string) (string, error) {
	token, err := keyring.Get(k.serviceName, NormalizeUsername(username))
	if err == nil {
		return token, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrTokenNotFound
	}
	return "", err
}

func (k *KeyringStore) DeleteToken(username string) error {
	err := keyring.Delete(k.serviceName, NormalizeUsername(username))
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrTokenNotFound
	}
	return err
}
