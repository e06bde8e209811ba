// Package config loads NDEx connection profiles from a TOML file. A file can
// hold several named profiles so one machine can load data into several
// accounts or servers.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the per-user configuration file looked up in the home
// directory when no --conf path is given.
const ConfigFileName = ".ndexsignorloader.toml"

// DefaultProfile is the profile used when --profile is not set.
const DefaultProfile = "ndexsignorloader"

// Profile holds the credentials for one NDEx account. The server is recorded
// without a scheme, ie public.ndexbio.org.
type Profile struct {
	User     string `toml:"user" validate:"required"`
	Password string `toml:"password" validate:"required"`
	Server   string `toml:"server" validate:"required"`
}

// DefaultPath returns the configuration file path in the user's home
// directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ConfigFileName), nil
}

// Load reads the named profile from a TOML config file. The NDEX_USER,
// NDEX_PASSWORD and NDEX_SERVER environment variables override the file's
// values, and make the file optional when all three are set.
func Load(path, profile string) (*Profile, error) {
	var profiles map[string]Profile
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &profiles); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config '%s': %w", path, err)
		}
	case os.IsNotExist(err):
		profiles = map[string]Profile{}
	default:
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := profiles[profile]
	if v := os.Getenv("NDEX_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("NDEX_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("NDEX_SERVER"); v != "" {
		cfg.Server = v
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("profile '%s' in '%s' is incomplete: %w", profile, path, err)
	}
	return &cfg, nil
}
