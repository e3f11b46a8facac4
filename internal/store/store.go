// Package store is the dashboard's durable key/value storage: the
// terminal equivalent of the browser's localStorage. The application
// owns exactly one entry (the last-connected account address); callers
// receive a Store as a dependency rather than reaching for a global.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Store is a narrow get/put interface over persisted key/value state.
type Store interface {
	Get(key string) (string, bool)
	Put(key, value string) error
}

// FileStore persists entries as a single JSON object, created with
// 0600 permissions so only the current user can read it.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the store file inside the config dir.
func DefaultPath(configDir string) string {
	return filepath.Join(configDir, "state.json")
}

// Get returns the value for key, or ("", false) if absent or the file
// is unreadable.
func (s *FileStore) Get(key string) (string, bool) {
	m := s.load()
	v, ok := m[key]
	return v, ok
}

// Put writes key=value, preserving other entries.
func (s *FileStore) Put(key, value string) error {
	m := s.load()
	m[key] = value
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// load reads the backing file. Returns an empty map (never nil) on any
// error so a corrupt file degrades to "nothing persisted".
func (s *FileStore) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	data map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *MemStore) Put(key, value string) error {
	s.data[key] = value
	return nil
}
