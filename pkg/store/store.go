// Package store persists engine snapshots.
//
// A [Snapshot] wraps the opaque blob produced by an engine's Write method
// with identity and bookkeeping metadata. The [Store] interface abstracts the
// backend; three implementations cover the usual deployments:
//
//   - file: one file per snapshot in a local directory, for CLI use
//   - redis: TTL-capable shared storage for short-lived session engines
//   - mongo: durable storage for trained engines served by a fleet
//
// Stores move bytes only; they never decode the blob. Loading an engine from
// a snapshot is the engine package's job.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one persisted engine image.
type Snapshot struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Data      []byte    `json:"data,omitempty" bson:"data,omitempty"`
}

// New creates a snapshot around an encoded engine blob.
func New(name string, data []byte) *Snapshot {
	return &Snapshot{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Data:      data,
	}
}

// Store is a snapshot storage backend.
type Store interface {
	// Save stores a snapshot, overwriting any snapshot with the same ID.
	Save(ctx context.Context, s *Snapshot) error

	// Load retrieves a snapshot, payload included.
	// Returns ErrNotFound if no snapshot with the ID exists.
	Load(ctx context.Context, id uuid.UUID) (*Snapshot, error)

	// List returns snapshot metadata (payloads omitted), newest first.
	List(ctx context.Context) ([]*Snapshot, error)

	// Delete removes a snapshot. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// Close releases backend resources.
	Close() error
}

// sortByCreatedAt orders snapshots newest first.
func sortByCreatedAt(snaps []*Snapshot) {
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
}
