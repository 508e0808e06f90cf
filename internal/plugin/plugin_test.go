package plugin

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"davcompat/internal/compat"
	"davcompat/internal/host"
)

func newHost(t *testing.T, store host.Store) *host.Host {
	t.Helper()
	dir := t.TempDir()
	runner, err := host.NewRunner(host.RunnerOptions{
		Store:     store,
		PrefsPath: filepath.Join(dir, "prefs.toml"),
		LockPath:  filepath.Join(dir, ".prefs.lock"),
		Keyring:   keyring.NewArrayKeyring(nil),
	})
	require.NoError(t, err)
	return host.New(runner)
}

func TestStartupRegistersInstance(t *testing.T) {
	h := newHost(t, host.StorePrefs)
	p := New(Options{AddonInstance: "webdavCompat"})
	require.NoError(t, p.Startup(context.Background(), h))

	instance, ok := h.Lookup("webdavCompat")
	require.True(t, ok)
	assert.NotEmpty(t, instance)
	assert.Same(t, p, instance)
}

func TestStartupTwiceFails(t *testing.T) {
	h := newHost(t, host.StorePrefs)
	require.NoError(t, New(Options{AddonInstance: "webdavCompat"}).Startup(context.Background(), h))
	err := New(Options{AddonInstance: "webdavCompat"}).Startup(context.Background(), h)
	assert.ErrorIs(t, err, host.ErrAlreadyRegistered)
}

func TestStartupRequiresSyncRunner(t *testing.T) {
	h := host.New(nil)
	p := New(Options{AddonInstance: "webdavCompat"})
	err := p.Startup(context.Background(), h)
	assert.ErrorIs(t, err, compat.ErrNoSyncRunner)

	_, ok := h.Lookup("webdavCompat")
	assert.False(t, ok)
	_, err = p.WebdavPassword(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestPasswordBeforeStartup(t *testing.T) {
	p := New(Options{AddonInstance: "webdavCompat"})
	_, err := p.WebdavPassword(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.ErrorIs(t, p.SetWebdavPassword(context.Background(), "x"), ErrNotStarted)
}

func TestShutdownUnregisters(t *testing.T) {
	ctx := context.Background()
	h := newHost(t, host.StorePrefs)
	p := New(Options{AddonInstance: "webdavCompat"})
	require.NoError(t, p.Startup(ctx, h))
	p.Shutdown(h)

	_, ok := h.Lookup("webdavCompat")
	assert.False(t, ok)
	_, err := p.WebdavPassword(ctx)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestPasswordThroughEitherStore(t *testing.T) {
	for _, store := range []host.Store{host.StorePrefs, host.StoreLogin} {
		t.Run(string(store), func(t *testing.T) {
			ctx := context.Background()
			h := newHost(t, store)
			p := New(Options{AddonInstance: "webdavCompat"})
			require.NoError(t, p.Startup(ctx, h))

			require.NoError(t, p.SetWebdavPassword(ctx, "dav-pass"))
			got, err := p.WebdavPassword(ctx)
			require.NoError(t, err)
			assert.Equal(t, "dav-pass", got)

			shape, err := p.WebdavShape(ctx)
			require.NoError(t, err)
			want := compat.PathLegacy
			if store == host.StoreLogin {
				want = compat.PathModern
			}
			assert.Equal(t, want, shape.Get)
			assert.Equal(t, want, shape.Set)
		})
	}
}
