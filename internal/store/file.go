package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage keeps every document in <dir>/<name>.xml.
//
// The version check in Save and the rename that follows it are not atomic
// with respect to other processes: a writer outside this process that lands
// between the two is overwritten. Within one process the Store's document
// lock serializes every cycle, so only multi-process setups sharing a data
// directory are exposed.
type FileStorage struct {
	dir string
}

// NewFileStorage creates dir when needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %w", ErrStorage, err)
	}
	return &FileStorage{dir: dir}, nil
}

// Dir returns the directory documents are stored in.
func (s *FileStorage) Dir() string {
	return s.dir
}

func (s *FileStorage) path(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed != filepath.Base(trimmed) || strings.HasPrefix(trimmed, ".") {
		return "", fmt.Errorf("%w: invalid document name %q", ErrStorage, name)
	}
	return filepath.Join(s.dir, trimmed+".xml"), nil
}

func (s *FileStorage) Load(ctx context.Context, name string) ([]byte, Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	path, err := s.path(name)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: read %s: %w", ErrStorage, name, err)
	}
	return data, versionOf(data), nil
}

// Save writes to a temporary file in the same directory and renames it over
// the target, so readers never observe a half-written document.
func (s *FileStorage) Save(ctx context.Context, name string, data []byte, expected Version) (Version, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.path(name)
	if err != nil {
		return "", err
	}

	current, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if expected != "" {
			return "", fmt.Errorf("%w: %s was removed", ErrConflict, name)
		}
	case err != nil:
		return "", fmt.Errorf("%w: read %s: %w", ErrStorage, name, err)
	default:
		if versionOf(current) != expected {
			return "", fmt.Errorf("%w: %s", ErrConflict, name)
		}
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: create temp for %s: %w", ErrStorage, name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: write %s: %w", ErrStorage, name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: sync %s: %w", ErrStorage, name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %w", ErrStorage, name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("%w: chmod %s: %w", ErrStorage, name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("%w: replace %s: %w", ErrStorage, name, err)
	}
	return versionOf(data), nil
}

func (s *FileStorage) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrStorage, s.dir)
	}
	return nil
}

func versionOf(data []byte) Version {
	sum := sha256.Sum256(data)
	return Version(hex.EncodeToString(sum[:]))
}
