package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"davcompat/internal/host"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DAVCOMPAT_HOME",
		"DAVCOMPAT_STORE",
		"DAVCOMPAT_ADDON_INSTANCE",
		"DAVCOMPAT_LOG_LEVEL",
		"DAVCOMPAT_KEYRING_BACKENDS",
		"DAVCOMPAT_KEYRING_FILE_DIR",
		"DAVCOMPAT_KEYRING_PASSPHRASE",
		"XDG_CONFIG_HOME",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestResolvePathsDefaultUsesHome(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", "/tmp/home-default")

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/home-default/.config/davcompat", paths.Home)
	assert.Equal(t, "/tmp/home-default/.config/davcompat/prefs.toml", paths.PrefsPath)
}

func TestResolvePathsXDG(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", "/tmp/home-xdg")
	t.Setenv("XDG_CONFIG_HOME", "~/cfg")

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/home-xdg/cfg/davcompat", paths.Home)
}

func TestResolvePathsHomeOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", "/tmp/home-ignored")
	t.Setenv("DAVCOMPAT_HOME", "/tmp/direct")

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/direct", paths.Home)
	assert.Equal(t, "/tmp/direct/state.json", paths.StatePath)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAVCOMPAT_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefs", cfg.Store)
	assert.Equal(t, host.StorePrefs, cfg.StoreKind())
	assert.Equal(t, DefaultAddonInstance, cfg.AddonInstance)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, cfg.Paths.KeyringDir, cfg.Keyring.FileDir)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("DAVCOMPAT_HOME", home)
	content := `
store = "login"
addon_instance = "myAddon"
log_level = "info"

[keyring]
backends = ["file"]
file_dir = "/tmp/ring"
`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte(content), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, host.StoreLogin, cfg.StoreKind())
	assert.Equal(t, "myAddon", cfg.AddonInstance)
	assert.Equal(t, []string{"file"}, cfg.Keyring.Backends)
	assert.Equal(t, "/tmp/ring", cfg.Keyring.FileDir)

	t.Setenv("DAVCOMPAT_STORE", "prefs")
	t.Setenv("DAVCOMPAT_KEYRING_BACKENDS", "secret-service,file")
	t.Setenv("DAVCOMPAT_KEYRING_PASSPHRASE", "pw")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, host.StorePrefs, cfg.StoreKind())
	assert.Equal(t, []string{"secret-service", "file"}, cfg.Keyring.Backends)
	assert.Equal(t, "pw", cfg.Keyring.Passphrase)
	assert.Equal(t, "myAddon", cfg.AddonInstance)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAVCOMPAT_HOME", t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAVCOMPAT_HOME", t.TempDir())

	t.Setenv("DAVCOMPAT_STORE", "vault")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("DAVCOMPAT_STORE", "prefs")
	t.Setenv("DAVCOMPAT_ADDON_INSTANCE", "not valid")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("DAVCOMPAT_HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte("store = "), 0o600))
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
