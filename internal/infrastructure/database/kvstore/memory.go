package kvstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore magasin en mémoire (tests, développement)
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	return s.Apply(ctx, []Write{Put(key, value)})
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	return s.Apply(ctx, []Write{Remove(key)})
}

func (s *MemoryStore) Apply(ctx context.Context, writes []Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateWrites(writes); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, w := range writes {
		if w.IsDelete() {
			delete(s.data, w.Key)
			continue
		}
		s.data[w.Key] = append([]byte(nil), w.Value...)
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return ctx.Err()
}

// Keys clés présentes, triées
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *MemoryStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
