package provider

import (
	"context"
	"time"
)

// FileDescriptor is the minimal metadata identifying a remote file without
// fetching its content. Never persisted.
type FileDescriptor struct {
	ID           string
	Name         string
	ModifiedTime time.Time
	Size         int64
}

// Query filters a file listing inside the app-private folder.
type Query struct {
	// Name requests an exact name match.
	Name string
	// Contains requests a substring name match. Ignored when Name is set.
	Contains string
	// Limit caps the number of results; 0 means no cap.
	Limit int
}

// CloudStorage defines the contract for cloud file backends used by the
// sync client. All files live in an app-private folder area not visible in
// the user's general file listing.
type CloudStorage interface {
	// Name returns the provider identifier (e.g. "azure").
	Name() string

	// Initialize prepares the provider. Idempotent.
	Initialize(ctx context.Context) error

	// SignIn validates access to the app-private folder.
	SignIn(ctx context.Context) error

	// SignOut drops any session state.
	SignOut(ctx context.Context) error

	// Create stores a new file with the given name and returns its descriptor.
	Create(ctx context.Context, name string, content []byte) (FileDescriptor, error)

	// Update replaces the content of an existing file by id.
	Update(ctx context.Context, id string, content []byte) (FileDescriptor, error)

	// Get fetches the raw content of a file by id.
	Get(ctx context.Context, id string) ([]byte, error)

	// List returns descriptors matching the query, ordered by modification
	// time descending.
	List(ctx context.Context, q Query) ([]FileDescriptor, error)
}
