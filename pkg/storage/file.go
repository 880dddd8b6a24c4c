package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// fileEntry is the on-disk form of one value.
type fileEntry struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// File stores one file per key under a directory, so values survive the
// process. Writes go through a temp file and a rename.
type File struct {
	dir string
}

// DefaultFileDir returns <user cache dir>/couchers.
func DefaultFileDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate user cache dir: %w", err)
	}
	return filepath.Join(base, "couchers"), nil
}

// NewFile creates a store in dir, creating the directory if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("file store: directory required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create file store: %w", err)
	}
	return &File{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (f *File) Dir() string {
	return f.dir
}

// path maps key to a file name that is safe on every platform.
func (f *File) path(key string) string {
	return filepath.Join(f.dir, base64.RawURLEncoding.EncodeToString([]byte(key)))
}

// Get returns the value stored under key. Expired values are removed.
func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	p := f.path(key)
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store get %s: %w", key, err)
	}

	var e fileEntry
	if err := json.Unmarshal(data, &e); err != nil {
		os.Remove(p)
		return nil, ErrNotFound
	}
	if !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt) {
		os.Remove(p)
		return nil, ErrNotFound
	}
	return e.Value, nil
}

// Set stores value under key.
func (f *File) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := fileEntry{Value: value}
	if value == nil {
		e.Value = []byte{}
	}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("file store set %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("file store set %s: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("file store set %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file store set %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file store set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (f *File) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file store delete %s: %w", key, err)
	}
	return nil
}
