package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileStore writes artifacts to a directory served under a URL prefix.
type FileStore struct {
	dir       string
	urlPrefix string
}

// NewFileStore returns a store rooted at dir whose public paths start with urlPrefix.
func NewFileStore(dir, urlPrefix string) *FileStore {
	return &FileStore{dir: dir, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

// Dir returns the directory artifacts are written to.
func (s *FileStore) Dir() string { return s.dir }

// URLPrefix returns the public prefix of stored paths, without a trailing slash.
func (s *FileStore) URLPrefix() string { return s.urlPrefix }

// FileName names the diagram of one exercise, e.g. "exercise-3-F#2-A2" becomes "exercise-3-Fs2-A2.svg".
func FileName(exerciseID int64, noteRange string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r == '#':
			return 's'
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, noteRange)
	return fmt.Sprintf("exercise-%d-%s.svg", exerciseID, safe)
}

// Save writes data under name, replacing any existing file, and returns its public path.
func (s *FileStore) Save(name string, data []byte) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", name, err)
	}

	return path.Join(s.urlPrefix, name), nil
}

// Read returns the contents of a stored artifact by name.
func (s *FileStore) Read(name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.dir, name))
}

// Remove deletes the artifact behind a public path. Missing files and paths outside the store are ignored.
func (s *FileStore) Remove(publicPath string) error {
	name, ok := s.NameOf(publicPath)
	if !ok {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// NameOf extracts the file name from a public path produced by [FileStore.Save].
func (s *FileStore) NameOf(publicPath string) (string, bool) {
	name, ok := strings.CutPrefix(publicPath, s.urlPrefix+"/")
	if !ok || validName(name) != nil {
		return "", false
	}
	return name, true
}

func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid asset name %q", name)
	}
	return nil
}
