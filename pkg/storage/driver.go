// Package storage persists chat transcripts written after each streamed
// response. Drivers are safe for concurrent use.
package storage

import (
	"context"
)

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Driver defines the interface for persisting and retrieving transcripts in a
// storage backend.
type Driver interface {
	// Put stores a transcript. Returns true if the transcript was newly
	// inserted, false if one with the same ID already exists. Existing
	// transcripts are never overwritten.
	Put(ctx context.Context, t *Transcript) (bool, error)

	// Get retrieves a transcript by its message ID.
	Get(ctx context.Context, id string) (*Transcript, error)

	// List returns up to limit transcripts, most recently started first.
	List(ctx context.Context, limit int) ([]*Transcript, error)

	// Close closes the store and releases any resources.
	Close() error
}
