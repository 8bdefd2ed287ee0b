// Package mock provides an in-memory object store for testing without
// cloud credentials.
package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Store implements storage.ObjectStore in memory. Individual operations
// can be made to fail for failure-injection tests.
type Store struct {
	mu      sync.Mutex
	objects map[string][]byte

	// Failure injection; when set, the corresponding operation errors.
	FailUpload   bool
	FailList     bool
	FailDownload bool
	FailDelete   bool

	// Deleted records every key passed to Delete, including failed ones.
	Deleted []string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

// Seed places an object in the store directly.
func (s *Store) Seed(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
}

// Has reports whether key exists.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *Store) Upload(ctx context.Context, key string, data []byte) error {
	if s.FailUpload {
		return fmt.Errorf("injected upload failure for %s", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if s.FailList {
		return nil, fmt.Errorf("injected list failure for %s", prefix)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	if s.FailDownload {
		return nil, fmt.Errorf("injected download failure for %s", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.Deleted = append(s.Deleted, key)
	s.mu.Unlock()
	if s.FailDelete {
		return fmt.Errorf("injected delete failure for %s", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *Store) URI(key string) string {
	return "mem://test-bucket/" + key
}
