// Package file stores slots in a single JSON snapshot on the local disk,
// the closest thing to a browser's local storage.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"farmcraft/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every slot as a raw string keyed by slot name, so a slot with
// malformed content still round-trips untouched.
type Store struct {
	mu    sync.Mutex
	path  string
	slots map[string]string
}

// Open reads the snapshot at path. A missing or empty file is an empty store.
func Open(path string) (*Store, error) {
	const operation = "file.Open"

	slots, err := readSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return &Store{path: path, slots: slots}, nil
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
	return []byte(data), nil
}

// Save writes the whole snapshot through a temp file and a rename, then
// adopts it in memory. A failed write leaves both disk and memory as before.
func (s *Store) Save(ctx context.Context, writes ...storage.Write) error {
	const operation = "file.Save"

	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.slots)+len(writes))
	for k, v := range s.slots {
		next[k] = v
	}
	for _, w := range writes {
		next[w.Slot] = string(w.Data)
	}

	if err := writeSnapshot(s.path, next); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	s.slots = next
	return nil
}

func (s *Store) Close() error { return nil }

func readSnapshot(path string) (map[string]string, error) {
	slots := make(map[string]string)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return slots, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(data) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return slots, nil
}

func writeSnapshot(path string, slots map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	temp := path + ".tmp"
	if err := os.WriteFile(temp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(temp, path); err != nil {
		os.Remove(temp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
