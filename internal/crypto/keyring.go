package crypto

import (
	"os"

	"github.com/cockroachdb/errors"
)

// Keyring provides secure key storage abstraction
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "invoicedesk"
	KeyName     = "db-encryption-key"

	// KeyEnv holds the database key when no system keyring is available
	KeyEnv = "INVOICEDESK_DB_KEY"
)

var (
	ErrKeyNotFound = errors.New("encryption key not found")
	ErrEmptyKey    = errors.New("password cannot be empty")
)

// NewKeyring returns the best available keyring implementation. A key set in
// the environment always wins over the platform store.
func NewKeyring() Keyring {
	return &chainKeyring{primary: envKeyring{}, secondary: newPlatformKeyring()}
}

// chainKeyring reads from primary first and writes to secondary
type chainKeyring struct {
	primary   Keyring
	secondary Keyring
}

func (k *chainKeyring) GetKey() (string, error) {
	if key, err := k.primary.GetKey(); err == nil {
		return key, nil
	}
	return k.secondary.GetKey()
}

func (k *chainKeyring) SetKey(password string) error {
	return k.secondary.SetKey(password)
}

func (k *chainKeyring) DeleteKey() error {
	return k.secondary.DeleteKey()
}

func (k *chainKeyring) IsAvailable() bool {
	return k.primary.IsAvailable() || k.secondary.IsAvailable()
}

// envKeyring reads the key from KeyEnv and cannot store one
type envKeyring struct{}

func (envKeyring) GetKey() (string, error) {
	key := os.Getenv(KeyEnv)
	if key == "" {
		return "", errors.Wrapf(ErrKeyNotFound, "%s environment variable not set", KeyEnv)
	}
	return key, nil
}

func (envKeyring) SetKey(password string) error {
	if password == "" {
		return ErrEmptyKey
	}
	return errors.Newf("keyring not available on this platform: please set %s", KeyEnv)
}

func (envKeyring) DeleteKey() error {
	return errors.Newf("keyring not available on this platform: please unset %s manually", KeyEnv)
}

func (envKeyring) IsAvailable() bool {
	return os.Getenv(KeyEnv) != ""
}

// StaticKeyring holds a key in memory. Used for ephemeral stores and tests.
type StaticKeyring struct {
	Key string
}

func (k *StaticKeyring) GetKey() (string, error) {
	if k.Key == "" {
		return "", ErrKeyNotFound
	}
	return k.Key, nil
}

func (k *StaticKeyring) SetKey(password string) error {
	if password == "" {
		return ErrEmptyKey
	}
	k.Key = password
	return nil
}

func (k *StaticKeyring) DeleteKey() error {
	if k.Key == "" {
		return ErrKeyNotFound
	}
	k.Key = ""
	return nil
}

func (k *StaticKeyring) IsAvailable() bool { return true }
