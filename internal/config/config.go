// Package config resolves console connection settings from flags,
// environment variables and an optional credentials file, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// CredentialsFileName is looked up in the user's home directory.
const CredentialsFileName = ".twistq.yaml"

// Console holds the connection settings for one console instance.
type Console struct {
	URL      string `env:"TWISTLOCK_URL" yaml:"url"`
	Username string `env:"TWISTLOCK_USER" yaml:"username"`
	Password string `env:"TWISTLOCK_PASSWORD" yaml:"password"`
	Token    string `env:"TWISTLOCK_TOKEN" yaml:"token"`
}

// DefaultCredentialsPath returns the path of the optional credentials file,
// or "" when the home directory cannot be determined.
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, CredentialsFileName)
}

// Resolve merges the credentials file (lowest precedence), the TWISTLOCK_*
// environment variables, and explicit flag values (highest precedence).
// credsPath may be "" to skip the file.
func Resolve(flags Console, credsPath string) (Console, error) {
	resolved, err := readCredentialsFile(credsPath)
	if err != nil {
		return Console{}, err
	}

	var fromEnv Console
	if err := env.Parse(&fromEnv); err != nil {
		return Console{}, fmt.Errorf("error parsing environment: %w", err)
	}

	resolved = merge(resolved, fromEnv)
	resolved = merge(resolved, flags)
	return resolved, nil
}

func merge(base, over Console) Console {
	if over.URL != "" {
		base.URL = over.URL
	}
	if over.Username != "" {
		base.Username = over.Username
	}
	if over.Password != "" {
		base.Password = over.Password
	}
	if over.Token != "" {
		base.Token = over.Token
	}
	return base
}

func readCredentialsFile(path string) (Console, error) {
	if path == "" {
		return Console{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Console{}, nil
	}
	if err != nil {
		return Console{}, fmt.Errorf("error reading credentials file: %w", err)
	}
	var c Console
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Console{}, fmt.Errorf("error parsing credentials file %s: %w", path, err)
	}
	return c, nil
}
