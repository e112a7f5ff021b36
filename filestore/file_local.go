package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type fileLocalStore struct {
	dir  string            // directory to store file
	name map[string]string // id to name mapping
	mu   sync.RWMutex
}

// NewFileLocalStore create new local file store, dir is created when missing
func NewFileLocalStore(dir string) (FileStore, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: %w", err)
	}
	return &fileLocalStore{
		dir:  dir,
		name: make(map[string]string),
	}, nil
}

func (s *fileLocalStore) Add(name string, content []byte) (string, string, error) {
	f, err := s.create()
	if err != nil {
		return "", "", err
	}
	id := filepath.Base(f.Name())

	_, err = f.Write(content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", "", fmt.Errorf("filestore: add %s: %w", name, err)
	}

	s.mu.Lock()
	s.name[id] = name
	s.mu.Unlock()
	return id, f.Name(), nil
}

func (s *fileLocalStore) Get(id string) (string, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.path(id)
	if !ok {
		return "", "", false
	}
	if _, err := os.Stat(p); err != nil {
		return "", "", false
	}
	name, ok := s.name[id]
	if !ok {
		name = id
	}
	return name, p, true
}

func (s *fileLocalStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.name, id)
	p, ok := s.path(id)
	if !ok {
		return false
	}
	return os.Remove(p) == nil
}

func (s *fileLocalStore) List() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fi, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	names := make(map[string]string, len(fi))
	for _, f := range fi {
		if f.IsDir() {
			continue
		}
		names[f.Name()] = s.name[f.Name()]
	}
	return names
}

// path resolves id inside dir, ids with separators never resolve
func (s *fileLocalStore) path(id string) (string, bool) {
	if id == "" || id != filepath.Base(id) || id == "." || id == ".." {
		return "", false
	}
	return filepath.Join(s.dir, id), true
}

func (s *fileLocalStore) create() (*os.File, error) {
	for range [50]struct{}{} {
		id, err := generateID()
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(filepath.Join(s.dir, id), os.O_CREATE|os.O_RDWR|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	return nil, errUniqueIDNotGenerated
}
