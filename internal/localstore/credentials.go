package localstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// keyringService names the OS keyring entry; the server URL is the account.
const keyringService = "promptgate"

// ErrNotLoggedIn is returned when no token is stored for a server.
var ErrNotLoggedIn = errors.New("not logged in")

// SaveToken stores the access token for serverURL in the OS keyring.
func SaveToken(serverURL, token string) error {
	if err := keyring.Set(keyringService, serverURL, token); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	return nil
}

// LoadToken returns the access token stored for serverURL.
func LoadToken(serverURL string) (string, error) {
	token, err := keyring.Get(keyringService, serverURL)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w to %s; run 'promptgate login' first", ErrNotLoggedIn, serverURL)
		}
		return "", fmt.Errorf("reading token: %w", err)
	}
	return token, nil
}

// DeleteToken removes the stored token for serverURL. A missing token is not an error.
func DeleteToken(serverURL string) error {
	if err := keyring.Delete(keyringService, serverURL); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}
