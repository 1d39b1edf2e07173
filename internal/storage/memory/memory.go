// Package memory is an in-process document backend for tests and the
// ephemeral data mode: nothing survives the process.
package memory

import (
	"context"
	"sync"

	"fintrack/internal/store"
)

type Store struct {
	mu   sync.Mutex
	data []byte
}

func New() *Store {
	return &Store{}
}

func (s *Store) Read(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, store.ErrNoDocument
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

func (s *Store) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}

func (s *Store) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}
