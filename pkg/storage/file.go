package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// FileStorage keeps all values in one JSON object on disk. The file is read
// once by OpenFile and rewritten atomically (temp file + rename) on every
// change, so a crash mid-write leaves the previous document intact.
type FileStorage struct {
	mu     sync.RWMutex
	path   string
	perm   fs.FileMode
	values map[string]string
}

// OpenFile loads path, creating parent directories as needed. A missing file
// is treated as an empty store.
func OpenFile(path string) (*FileStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty file path", ErrBackend)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Join(ErrBackend, err)
	}

	s := &FileStorage{
		path:   path,
		perm:   0o600,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, errors.Join(ErrBackend, err)
	}

	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, errors.Join(ErrCorrupted, fmt.Errorf("%s: %w", path, err))
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}

	return s, nil
}

// Path returns the backing file path.
func (f *FileStorage) Path() string { return f.path }

func (f *FileStorage) Get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileStorage) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.values)
	next[key] = value
	if err := f.flush(next); err != nil {
		return err
	}
	f.values = next
	return nil
}

func (f *FileStorage) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.values)
	changed := false
	for _, key := range keys {
		if _, ok := next[key]; ok {
			delete(next, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}

	if err := f.flush(next); err != nil {
		return err
	}
	f.values = next
	return nil
}

// flush must be called with mu held.
func (f *FileStorage) flush(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Join(ErrBackend, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storefront-*.tmp")
	if err != nil {
		return errors.Join(ErrBackend, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrBackend, err)
	}
	if err := tmp.Chmod(f.perm); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrBackend, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrBackend, err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Join(ErrBackend, err)
	}
	return nil
}
