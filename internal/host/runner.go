package host

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// Store selects which controller shape the runner hands out for webdav.
type Store string

const (
	// StorePrefs keeps the password as a plain attribute persisted to the
	// prefs file.
	StorePrefs Store = "prefs"
	// StoreLogin keeps the password behind GetPassword/SetPassword methods
	// backed by the OS keyring.
	StoreLogin Store = "login"
)

const webdavBackend = "webdav"

func ParseStore(raw string) (Store, error) {
	switch Store(strings.ToLower(strings.TrimSpace(raw))) {
	case StorePrefs:
		return StorePrefs, nil
	case StoreLogin:
		return StoreLogin, nil
	default:
		return "", fmt.Errorf("unknown store %q (allowed: prefs, login)", raw)
	}
}

type RunnerOptions struct {
	Store     Store
	PrefsPath string
	LockPath  string
	// Keyring is required for StoreLogin.
	Keyring keyring.Keyring
}

// Runner is the sync runner service. Controllers are created once and
// reused for the runner's lifetime. Lookups are safe for concurrent use;
// writes to the prefs controller's attributes are not, see Flush.
type Runner struct {
	opts RunnerOptions

	mu    sync.Mutex
	prefs *PrefsController
	saved PrefsController
	login *LoginController
}

func NewRunner(opts RunnerOptions) (*Runner, error) {
	switch opts.Store {
	case StorePrefs:
		if opts.PrefsPath == "" {
			return nil, fmt.Errorf("prefs store requires a prefs path")
		}
	case StoreLogin:
		if opts.Keyring == nil {
			return nil, fmt.Errorf("login store requires a keyring")
		}
	default:
		return nil, fmt.Errorf("unknown store %q", opts.Store)
	}
	return &Runner{opts: opts}, nil
}

func (r *Runner) Store() Store {
	return r.opts.Store
}

// StorageController returns the controller handle for backend. Only the
// webdav backend exists.
func (r *Runner) StorageController(ctx context.Context, backend string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if backend != webdavBackend {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.opts.Store {
	case StoreLogin:
		if r.login == nil {
			r.login = NewLoginController(r.opts.Keyring)
		}
		return r.login, nil
	default:
		if r.prefs == nil {
			prefs, err := loadPrefs(r.opts.PrefsPath)
			if err != nil {
				return nil, err
			}
			r.prefs = prefs
			r.saved = *prefs
		}
		return r.prefs, nil
	}
}

// Flush persists the prefs controller when its attributes changed since
// they were loaded. Attribute writes bypass the runner, so changes are
// found by comparing against the loaded copy.
//
// The runner cannot lock those attribute writes. Callers must not run
// Flush while another goroutine assigns to the controller; app.Service
// holds one lock across a set and its flush.
func (r *Runner) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.prefs == nil || *r.prefs == r.saved {
		return nil
	}
	if err := savePrefs(r.opts.PrefsPath, r.opts.LockPath, *r.prefs); err != nil {
		return err
	}
	r.saved = *r.prefs
	return nil
}
