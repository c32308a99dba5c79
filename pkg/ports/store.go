package ports

import (
	"context"
)

// UnitStore is the persistence gateway of the engine.
// Ids are the storage keys of Story Units; texts are whole documents.
type UnitStore interface {
	// List returns every unit id, sorted.
	List(ctx context.Context) ([]string, error)

	// Read returns the text of a unit.
	// Returns domain.ErrUnitNotFound if the unit does not exist.
	Read(ctx context.Context, id string) (string, error)

	// Write creates or replaces a unit.
	Write(ctx context.Context, id, text string) error

	// Delete removes a unit.
	// Returns domain.ErrUnitNotFound if the unit does not exist.
	Delete(ctx context.Context, id string) error

	// Rename moves a unit to a new id without touching its text.
	// Returns domain.ErrUnitNotFound if oldID is missing and
	// domain.ErrUnitExists if newID is already taken.
	Rename(ctx context.Context, oldID, newID string) error
}

// Watchable is implemented by stores that can notify about changes made
// outside the engine, such as a text editor saving a unit file.
type Watchable interface {
	// Watch returns a channel that receives the id of each changed unit.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
