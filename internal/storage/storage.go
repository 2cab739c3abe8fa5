// Package storage defines the slot store that holds the serialized farm
// state. Drivers live in the subpackages.
package storage

import (
	"context"
	"errors"
)

// Slot names shared by every driver.
const (
	SlotFarms           = "farms"
	SlotIngredientCosts = "ingredientCosts"
)

// ErrNotFound is returned by Load when a slot has never been written.
var ErrNotFound = errors.New("storage: slot not found")

// Write is a single slot assignment inside a Save call.
type Write struct {
	Slot string
	Data []byte
}

// Store reads and writes named slots. Save applies all writes or none.
type Store interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Save(ctx context.Context, writes ...Write) error
	Close() error
}
