// Package config loads davcompat settings: built-in defaults, then the
// TOML config file, then DAVCOMPAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"

	"davcompat/internal/host"
)

const (
	DefaultAddonInstance = "webdavCompat"
	DefaultLogLevel      = "warning"
)

var addonInstancePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

type Config struct {
	// Store selects the controller shape the host hands out: "prefs"
	// (plain attribute) or "login" (keyring-backed methods).
	Store string `toml:"store" env:"DAVCOMPAT_STORE"`
	// AddonInstance is the name the plugin registers on the host object.
	AddonInstance string        `toml:"addon_instance" env:"DAVCOMPAT_ADDON_INSTANCE"`
	LogLevel      string        `toml:"log_level" env:"DAVCOMPAT_LOG_LEVEL"`
	Keyring       KeyringConfig `toml:"keyring" envPrefix:"DAVCOMPAT_KEYRING_"`

	Paths Paths `toml:"-"`
}

type KeyringConfig struct {
	Backends []string `toml:"backends" env:"BACKENDS" envSeparator:","`
	FileDir  string   `toml:"file_dir" env:"FILE_DIR"`
	// Passphrase unlocks the file backend. Environment only.
	Passphrase string `toml:"-" env:"PASSPHRASE"`
}

func Default(paths Paths) Config {
	return Config{
		Store:         string(host.StorePrefs),
		AddonInstance: DefaultAddonInstance,
		LogLevel:      DefaultLogLevel,
		Keyring: KeyringConfig{
			FileDir: paths.KeyringDir,
		},
		Paths: paths,
	}
}

// Load resolves paths and reads the config. An empty configPath means the
// default location, which may be absent; an explicit path must exist.
func Load(configPath string) (Config, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return Config{}, err
	}
	explicit := configPath != ""
	if explicit {
		paths.ConfigPath = configPath
	}

	cfg := Default(paths)
	bytes, err := os.ReadFile(paths.ConfigPath)
	switch {
	case err == nil:
		if err := toml.Unmarshal(bytes, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", paths.ConfigPath, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Paths = paths
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv applies environment overrides to target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := host.ParseStore(c.Store); err != nil {
		return err
	}
	if !addonInstancePattern.MatchString(c.AddonInstance) {
		return fmt.Errorf("invalid addon instance name %q", c.AddonInstance)
	}
	return nil
}

// StoreKind returns the parsed store. Call after Validate.
func (c Config) StoreKind() host.Store {
	store, _ := host.ParseStore(c.Store)
	return store
}
