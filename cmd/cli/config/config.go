package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".phonebook_token"
)

// APIURLFlag is bound to the root --api-url flag and wins over the environment.
var APIURLFlag string

// ErrNotLoggedIn is returned by LoadToken when no token has been saved.
var ErrNotLoggedIn = errors.New("not logged in; run `phonebook users login` first")

// APIURL returns the base URL for the phonebook API.
// It can be overridden with --api-url or the PHONEBOOK_API_URL environment variable.
func APIURL() string {
	if APIURLFlag != "" {
		return strings.TrimRight(APIURLFlag, "/")
	}
	if v := os.Getenv("PHONEBOOK_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// ==========================
// Token Storage
// ==========================

// TokenPath is $PHONEBOOK_TOKEN_FILE, or ~/.phonebook_token.
func TokenPath() string {
	if v := os.Getenv("PHONEBOOK_TOKEN_FILE"); v != "" {
		return v
	}
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}

func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0600)
}

func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// RemoveToken deletes the saved token. It reports false when there was none.
func RemoveToken() (bool, error) {
	err := os.Remove(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
