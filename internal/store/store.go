package store

import (
	"context"
	"errors"
)

// MaxBatchOps is the hard per-batch operation ceiling enforced by the
// document store. Callers that need headroom should flush well below it.
const MaxBatchOps = 500

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrBatchTooLarge is returned by Commit when a batch exceeds MaxBatchOps.
	ErrBatchTooLarge = errors.New("batch exceeds operation limit")
)

// Document is one stored record within a per-user collection.
type Document struct {
	ID   string
	Data map[string]any
}

// Store is the per-user structured document database consumed by the
// backup engine: collection reads, single-document upserts, and batched
// writes/deletes with an enforced per-batch cap.
type Store interface {
	// List returns every document in the user's collection.
	List(ctx context.Context, userID, collection string) ([]Document, error)

	// Get returns a single document or ErrNotFound.
	Get(ctx context.Context, userID, collection, id string) (*Document, error)

	// Set upserts a single document.
	Set(ctx context.Context, userID, collection, id string, data map[string]any) error

	// Delete removes a single document. Deleting a missing document is not
	// an error.
	Delete(ctx context.Context, userID, collection, id string) error

	// NewBatch starts an empty write batch.
	NewBatch() Batch
}

// Batch accumulates write and delete operations committed together.
// Operations are buffered until Commit; a batch is single-use.
type Batch interface {
	Set(userID, collection, id string, data map[string]any)
	Delete(userID, collection, id string)

	// Len reports the number of buffered operations.
	Len() int

	// Commit applies all buffered operations atomically. Fails with
	// ErrBatchTooLarge when more than MaxBatchOps are buffered.
	Commit(ctx context.Context) error
}
