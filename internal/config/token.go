package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

const (
	keychainService = "prefs"
	apiTokenAccount = "api_token"
	apiTokenEnv     = "PREFS_API_TOKEN"
)

// Keychain abstracts the platform secret store.
type Keychain interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

// NewKeychain returns the platform secret store: macOS Keychain via the
// security CLI, elsewhere a 0600 secrets file under XDG_DATA_HOME.
func NewKeychain() Keychain {
	return platformKeychain{}
}

type platformKeychain struct{}

func (platformKeychain) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (platformKeychain) Set(service, account, value string) error {
	return keychainSet(service, account, value)
}

// GetAPIToken returns the bearer token guarding the HTTP API. PREFS_API_TOKEN
// wins; otherwise the token is read from kc, and generated and stored there
// on first use.
func GetAPIToken(kc Keychain) (string, error) {
	if tok := os.Getenv(apiTokenEnv); tok != "" {
		return tok, nil
	}
	if tok, err := kc.Get(keychainService, apiTokenAccount); err == nil && tok != "" {
		return tok, nil
	}

	tok := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := kc.Set(keychainService, apiTokenAccount, tok); err != nil {
		return "", fmt.Errorf("storing API token: %w", err)
	}
	return tok, nil
}
