package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileStore keeps all entries in a single JSON file that is rewritten on
// every change.
type FileStore struct {
	Entries map[string]string `json:"entries"`
	path    string
	mu      sync.Mutex
	closed  bool
}

// NewFileStore opens the JSON file at path, creating an empty store when the
// file does not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path}
	if err := fs.Load(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return fs, nil
}

// Load reads the file into memory.
func (fs *FileStore) Load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.Open(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			fs.Entries = make(map[string]string)
			return nil
		}
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(fs); err != nil {
		return err
	}
	if fs.Entries == nil {
		fs.Entries = make(map[string]string)
	}
	return nil
}

// save writes the entries to disk; callers hold mu.
func (fs *FileStore) save() error {
	f, err := os.OpenFile(fs.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(fs)
}

func (fs *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return "", false, ErrClosed
	}
	v, ok := fs.Entries[key]
	return v, ok, nil
}

func (fs *FileStore) Set(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}
	fs.Entries[key] = value
	return fs.save()
}

func (fs *FileStore) Delete(_ context.Context, keys ...string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}
	for _, k := range keys {
		delete(fs.Entries, k)
	}
	return fs.save()
}

func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.closed = true
	return nil
}
