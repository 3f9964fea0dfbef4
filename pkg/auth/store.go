package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	// TokenEnvVar names the environment variable checked first for the
	// GitHub access token.
	TokenEnvVar = "GITHUB_TOKEN"

	keyringService = "modelscore"
	keyringUser    = "github_token"
	tokenFileName  = "github_token"
	tokenFileMode  = 0o600
)

// ErrNoToken is returned when no GitHub token can be found anywhere.
var ErrNoToken = errors.New("no GitHub token found (set GITHUB_TOKEN or run: modelscore auth)")

// ResolveToken returns the GitHub token from the environment, the OS
// keychain, or the legacy token file, in that order.
func ResolveToken(homeDir string) (string, error) {
	if t := os.Getenv(TokenEnvVar); t != "" {
		return t, nil
	}

	if t, err := keyring.Get(keyringService, keyringUser); err == nil && t != "" {
		return t, nil
	}

	t, err := readTokenFile(homeDir)
	if err != nil {
		return "", ErrNoToken
	}

	// migrate the file token to the keychain
	if migrateErr := keyring.Set(keyringService, keyringUser, t); migrateErr == nil {
		slog.Info("migrated token from file to OS keychain")
		os.Remove(filepath.Join(homeDir, tokenFileName))
	}

	return t, nil
}

// SaveToken stores the token in the OS keychain, falling back to a
// mode-0600 file under homeDir when no keychain is available.
func SaveToken(homeDir, token string) error {
	if token == "" {
		return errors.New("token is required")
	}

	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return writeTokenFile(homeDir, token)
	}

	// clean up legacy file if it exists
	os.Remove(filepath.Join(homeDir, tokenFileName))
	return nil
}

func readTokenFile(homeDir string) (string, error) {
	path := filepath.Join(homeDir, tokenFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading token file %s: %w", path, err)
	}
	return string(b), nil
}

func writeTokenFile(homeDir, token string) error {
	path := filepath.Join(homeDir, tokenFileName)
	if err := os.WriteFile(path, []byte(token), tokenFileMode); err != nil {
		return fmt.Errorf("writing token file %s: %w", path, err)
	}
	return nil
}
