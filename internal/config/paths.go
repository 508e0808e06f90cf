package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Paths locates every file davcompat reads or writes.
type Paths struct {
	Home       string `json:"home"`
	ConfigPath string `json:"configPath"`
	PrefsPath  string `json:"prefsPath"`
	LockPath   string `json:"lockPath"`
	StatePath  string `json:"statePath"`
	KeyringDir string `json:"keyringDir"`
}

// ResolvePaths picks the davcompat home from DAVCOMPAT_HOME, then
// $XDG_CONFIG_HOME/davcompat, then ~/.config/davcompat.
func ResolvePaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}
	xdg := firstNonEmpty(os.Getenv("XDG_CONFIG_HOME"), filepath.Join(home, ".config"))
	root := resolvePathWithHome(
		firstNonEmpty(
			os.Getenv("DAVCOMPAT_HOME"),
			filepath.Join(resolvePathWithHome(xdg, home), "davcompat"),
		),
		home,
	)
	return Paths{
		Home:       root,
		ConfigPath: filepath.Join(root, "config.toml"),
		PrefsPath:  filepath.Join(root, "prefs.toml"),
		LockPath:   filepath.Join(root, ".prefs.lock"),
		StatePath:  filepath.Join(root, "state.json"),
		KeyringDir: filepath.Join(root, "keyring"),
	}, nil
}

func resolvePathWithHome(raw string, home string) string {
	if strings.HasPrefix(raw, "~/") {
		return filepath.Join(home, strings.TrimPrefix(raw, "~/"))
	}
	if strings.HasPrefix(raw, "~\\") {
		return filepath.Join(home, strings.TrimPrefix(raw, "~\\"))
	}
	if raw == "~" {
		return home
	}
	return filepath.Clean(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
