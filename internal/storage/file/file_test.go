package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"farmcraft/internal/storage"
)

func TestStore_SaveAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "farmcraft.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Load(ctx, storage.SlotFarms); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Load on empty store: err = %v, want ErrNotFound", err)
	}

	err = s.Save(ctx,
		storage.Write{Slot: storage.SlotFarms, Data: []byte(`[{"name":"North"}]`)},
		storage.Write{Slot: storage.SlotIngredientCosts, Data: []byte(`{"Wood":0.5}`)},
	)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Load(ctx, storage.SlotIngredientCosts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `{"Wood":0.5}` {
		t.Errorf("costs slot = %s", got)
	}
}

func TestStore_MalformedSlotRoundTrips(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "farmcraft.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Save(ctx, storage.Write{Slot: storage.SlotFarms, Data: []byte(`{not json`)}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Load(ctx, storage.SlotFarms)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `{not json` {
		t.Errorf("farms slot = %q", got)
	}
}

func TestStore_FailedWriteKeepsState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "farmcraft.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Save(ctx, storage.Write{Slot: storage.SlotFarms, Data: []byte(`[]`)}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A directory squatting on the temp path makes the write fail.
	if err := os.Mkdir(path+".tmp", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := s.Save(ctx, storage.Write{Slot: storage.SlotFarms, Data: []byte(`[{"name":"x"}]`)}); err == nil {
		t.Fatal("expected Save to fail")
	}

	got, err := s.Load(ctx, storage.SlotFarms)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `[]` {
		t.Errorf("farms slot after failed save = %s, want []", got)
	}
}

func TestOpen_CorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farmcraft.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected Open to fail on a corrupt snapshot")
	}
}
