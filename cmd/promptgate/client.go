package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crewdigital/promptgate/internal/cliclient"
	"github.com/crewdigital/promptgate/internal/localstore"
)

// getAuthenticatedClient loads the configured server and its stored token.
func getAuthenticatedClient() (*cliclient.Client, error) {
	cfg, err := localstore.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	token, err := localstore.LoadToken(cfg.Server())
	if err != nil {
		return nil, err
	}

	return cliclient.New(cfg.Server(), token), nil
}

// defaultModel returns flagValue, or the model saved in the CLI config.
func defaultModel(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	cfg, err := localstore.LoadConfig()
	if err != nil {
		return ""
	}
	return cfg.Model
}

// normalizeServerURL validates and trims a server URL.
func normalizeServerURL(raw string) (string, error) {
	serverURL := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return "", fmt.Errorf("server URL must start with http:// or https://")
	}
	return serverURL, nil
}

// readInput returns the contents of path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("input is empty")
	}
	return text, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// truncate shortens s to n runes for table output.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
