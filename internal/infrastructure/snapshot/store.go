package snapshot

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("snapshot not found")

// Store keeps one serialized icon set document per project as
// <dir>/<prefix>.json. It is the file half of the project's dual-write
// persistence; the database blob is the other half.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Path(prefix string) string {
	return filepath.Join(s.dir, prefix+".json")
}

// Exists checks for a snapshot file. Project creation uses this to refuse a
// prefix whose file is already present.
func (s *Store) Exists(prefix string) (bool, error) {
	_, err := os.Stat(s.Path(prefix))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *Store) Read(prefix string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(prefix))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the snapshot atomically via a temp file and rename, so a
// crash mid-write never leaves a truncated document behind.
func (s *Store) Write(prefix string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, prefix+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.Path(prefix))
}

func (s *Store) Remove(prefix string) error {
	err := os.Remove(s.Path(prefix))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
