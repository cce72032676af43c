// Package credentials stores secrets in the system keyring.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "tandem"
	// APIKeyName is the keyring entry and environment variable for the chat
	// API key.
	APIKeyName = "TANDEM_API_KEY"
)

// ErrNotFound indicates that a requested secret was not found.
var ErrNotFound = errors.New("secret not found")

// GetSecret retrieves the named secret from the system keyring.
func GetSecret(name string) (string, error) {
	secret, err := keyring.Get(serviceName, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read secret %q: %w", name, err)
	}
	return secret, nil
}

func SetSecret(name, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("secret %q cannot be empty", name)
	}
	if err := keyring.Set(serviceName, name, trimmed); err != nil {
		return fmt.Errorf("store secret %q: %w", name, err)
	}
	return nil
}

func DeleteSecret(name string) error {
	if err := keyring.Delete(serviceName, name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete secret %q: %w", name, err)
	}
	return nil
}

// GetAPIKey returns the chat API key. The environment variable wins over
// the keyring so CI and containers work without keyring access.
func GetAPIKey() (string, error) {
	if env := strings.TrimSpace(os.Getenv(APIKeyName)); env != "" {
		return env, nil
	}
	return GetSecret(APIKeyName)
}

func SetAPIKey(key string) error { return SetSecret(APIKeyName, key) }

func DeleteAPIKey() error { return DeleteSecret(APIKeyName) }

// HasAPIKey reports whether an API key is available from anywhere.
func HasAPIKey() bool {
	key, err := GetAPIKey()
	return err == nil && key != ""
}
