package store

import "sync"

// MemoryStore is the in-memory Store variant for tests and caches. Safe for
// concurrent use across keys.
type MemoryStore[T any] struct {
	mu     sync.RWMutex
	data   map[string]T
	closed bool
}

func NewMemory[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{data: make(map[string]T)}
}

func (s *MemoryStore[T]) Get(key string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	if s.closed {
		return zero, false, ErrClosed
	}
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *MemoryStore[T]) Put(key string, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.data[key] = value
	return nil
}

func (s *MemoryStore[T]) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.data, key)
	return nil
}

func (s *MemoryStore[T]) Contains(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrClosed
	}
	_, ok := s.data[key]
	return ok, nil
}

func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore[T]) Flush() error { return nil }

func (s *MemoryStore[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
