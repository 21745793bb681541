//go:build darwin

package crypto

import (
	"github.com/cockroachdb/errors"
	"github.com/zalando/go-keyring"
)

type darwinKeyring struct{}

func newPlatformKeyring() Keyring {
	return &darwinKeyring{}
}

// GetKey retrieves the encryption key from macOS Keychain
func (k *darwinKeyring) GetKey() (string, error) {
	key, err := keyring.Get(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", errors.Wrap(ErrKeyNotFound, "keychain")
		}
		return "", errors.Wrap(err, "failed to retrieve key from keychain")
	}

	if key == "" {
		return "", errors.Wrap(ErrEmptyKey, "keychain entry")
	}

	return key, nil
}

// SetKey stores the encryption key in macOS Keychain
func (k *darwinKeyring) SetKey(password string) error {
	if password == "" {
		return ErrEmptyKey
	}

	if err := keyring.Set(ServiceName, KeyName, password); err != nil {
		return errors.Wrap(err, "failed to store key in keychain")
	}
	return nil
}

// DeleteKey removes the encryption key from macOS Keychain
func (k *darwinKeyring) DeleteKey() error {
	if err := keyring.Delete(ServiceName, KeyName); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.Wrap(ErrKeyNotFound, "keychain")
		}
		return errors.Wrap(err, "failed to delete key from keychain")
	}
	return nil
}

// IsAvailable probes the keychain with a throwaway entry
func (k *darwinKeyring) IsAvailable() bool {
	testKey := "__invoicedesk_availability_test__"
	if err := keyring.Set(ServiceName, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(ServiceName, testKey)
	return true
}
