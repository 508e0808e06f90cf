package host

import (
	"errors"
	"fmt"
	"os"

	"davcompat/internal/fsutil"
)

// PrefsController is the legacy controller shape: the password is a
// plain attribute, read and assigned directly. The runner writes it back
// to the prefs file on Flush.
type PrefsController struct {
	URL      string `toml:"url,omitempty"`
	Username string `toml:"username,omitempty"`
	Password string `toml:"password,omitempty"`
}

type prefsFile struct {
	Sync prefsSync `toml:"sync"`
}

type prefsSync struct {
	Storage PrefsController `toml:"storage"`
}

func loadPrefs(path string) (*PrefsController, error) {
	var file prefsFile
	if err := fsutil.ReadTOMLFile(path, &file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &PrefsController{}, nil
		}
		return nil, fmt.Errorf("read prefs %s: %w", path, err)
	}
	prefs := file.Sync.Storage
	return &prefs, nil
}

func savePrefs(path, lockPath string, prefs PrefsController) error {
	if lockPath != "" {
		lock, err := fsutil.AcquireLock(lockPath)
		if err != nil {
			return err
		}
		defer func() {
			_ = lock.Release()
		}()
	}
	return fsutil.WriteTOMLAtomic(path, prefsFile{Sync: prefsSync{Storage: prefs}})
}
