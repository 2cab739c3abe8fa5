package memory

import (
	"context"
	"sync"

	"farmcraft/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps slots in process memory. Nothing survives a restart.
type Store struct {
	mu      sync.Mutex
	slots   map[string][]byte
	saveErr error
	saves   int
}

func New() *Store {
	return &Store{slots: make(map[string][]byte)}
}

func (s *Store) Load(ctx context.Context, slot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.slots[slot]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) Save(ctx context.Context, writes ...storage.Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	for _, w := range writes {
		s.slots[w.Slot] = append([]byte(nil), w.Data...)
	}
	s.saves++
	return nil
}

func (s *Store) Close() error { return nil }

// Put seeds a slot directly, bypassing failure injection.
func (s *Store) Put(slot string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = append([]byte(nil), data...)
}

// FailSaves makes every following Save return err. Pass nil to recover.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves reports how many Save calls succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
