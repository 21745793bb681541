//go:build !darwin

package crypto

// Without a system keychain the environment is the only key source
func newPlatformKeyring() Keyring {
	return envKeyring{}
}
