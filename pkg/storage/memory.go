package storage

import (
	"context"
	"strings"
	"sync"
)

const memoryScheme = "mem://"

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore keeps objects in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Put(_ context.Context, name string, data []byte, contentType string) (string, error) {
	id := memoryScheme + strings.TrimPrefix(name, "/")
	s.mu.Lock()
	s.objects[id] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) ([]byte, string, error) {
	s.mu.RLock()
	obj, ok := s.objects[id]
	s.mu.RUnlock()
	if !ok {
		return nil, "", ErrNoObject
	}
	return append([]byte(nil), obj.data...), obj.contentType, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.objects, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored objects
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
