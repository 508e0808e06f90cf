package app

import (
	"os"
	"time"

	"davcompat/internal/fsutil"
)

func loadState(path string) (StateFile, error) {
	var s StateFile
	err := fsutil.ReadJSONFile(path, &s)
	if err != nil {
		if os.IsNotExist(err) {
			return StateFile{Version: 1}, nil
		}
		return StateFile{}, err
	}
	if s.Version == 0 {
		s.Version = 1
	}
	return s, nil
}

func saveState(path string, state StateFile) error {
	state.Version = 1
	if state.LastSetAt == "" {
		state.LastSetAt = time.Now().UTC().Format(time.RFC3339)
	}
	return fsutil.WriteJSONAtomic(path, state)
}
