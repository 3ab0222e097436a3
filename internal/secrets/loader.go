package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when a source has neither a file, an inline
// value nor a set environment variable. Optional secrets check for it with errors.Is.
var ErrNotConfigured = errors.New("is not configured")

// Source describes where a secret comes from. File wins over Value, Value wins over Env.
type Source struct {
	// Name is used in error messages.
	Name  string
	Value string
	File  string
	// Env names an environment variable consulted last.
	Env string
}

// Load resolves the secret of src and trims it.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if src.Env != "" {
		if secret := strings.TrimSpace(os.Getenv(src.Env)); secret != "" {
			return secret, nil
		}
	}

	return "", fmt.Errorf("%s %w", name, ErrNotConfigured)
}

// LoadOptional is Load for secrets that may be absent: an unconfigured
// source yields an empty secret and no error.
func LoadOptional(src Source) (string, error) {
	secret, err := Load(src)
	if errors.Is(err, ErrNotConfigured) {
		return "", nil
	}
	return secret, err
}
