package redis

import (
	"context"
	"errors"
	"fmt"

	"farmcraft/internal/storage"
	redisclient "farmcraft/pkg/redis"
)

var _ storage.Store = (*Storage)(nil)

// Storage keeps each slot under its own key.
type Storage struct {
	client *redisclient.Client
	prefix string
}

// New builds a slot store on client; keys are prefix+slot.
func New(client *redisclient.Client, prefix string) *Storage {
	return &Storage{client: client, prefix: prefix}
}

func (s *Storage) Load(ctx context.Context, slot string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.buildKey(slot))
	if errors.Is(err, redisclient.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get slot %s: %w", slot, err)
	}
	return data, nil
}

func (s *Storage) Save(ctx context.Context, writes ...storage.Write) error {
	switch len(writes) {
	case 0:
		return nil
	case 1:
		if err := s.client.Set(ctx, s.buildKey(writes[0].Slot), writes[0].Data); err != nil {
			return fmt.Errorf("set slot %s: %w", writes[0].Slot, err)
		}
		return nil
	}

	pairs := make(map[string][]byte, len(writes))
	for _, w := range writes {
		pairs[s.buildKey(w.Slot)] = w.Data
	}
	if err := s.client.SetAll(ctx, pairs); err != nil {
		return fmt.Errorf("set %d slots: %w", len(writes), err)
	}
	return nil
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) buildKey(slot string) string {
	return s.prefix + slot
}
