package credstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore implements Store on top of a single file, giving the token
// durability across process restarts. The file holds nothing but the token,
// created with 0600 since it is a bearer credential.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed token store at path, creating parent
// directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, ErrStorePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Join(ErrStorePath, err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

func (s *FileStore) Save(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Write-then-rename keeps a crash from leaving a truncated token behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
