package remote

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/provider"
)

// Client adapts a cloud storage provider into the sync operations the
// backup engine needs. It tracks two flags: initialized and authenticated.
// Any network operation other than Initialize/SignIn ensures both by
// calling them implicitly first.
type Client struct {
	provider      provider.CloudStorage
	initialized   bool
	authenticated bool
}

// NewClient wraps the given provider. The client starts uninitialized.
func NewClient(p provider.CloudStorage) *Client {
	return &Client{provider: p}
}

// Initialize prepares the provider. No-op if already initialized.
func (c *Client) Initialize(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.provider.Initialize(ctx); err != nil {
		return opErr("initialize", err)
	}
	c.initialized = true
	return nil
}

// SignIn authenticates against the provider. Requires initialization.
func (c *Client) SignIn(ctx context.Context) error {
	if err := c.Initialize(ctx); err != nil {
		return err
	}
	if c.authenticated {
		return nil
	}
	if err := c.provider.SignIn(ctx); err != nil {
		return opErr("sign-in", err)
	}
	c.authenticated = true
	return nil
}

// SignOut drops the authenticated state but stays initialized.
func (c *Client) SignOut(ctx context.Context) error {
	if !c.authenticated {
		return nil
	}
	if err := c.provider.SignOut(ctx); err != nil {
		return opErr("sign-out", err)
	}
	c.authenticated = false
	return nil
}

func (c *Client) ensureReady(ctx context.Context) error {
	return c.SignIn(ctx)
}

// Locate finds a file with an exact name match in the app-private folder.
// Returns nil when no such file exists.
func (c *Client) Locate(ctx context.Context, name string) (*provider.FileDescriptor, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	files, err := c.provider.List(ctx, provider.Query{Name: name, Limit: 1})
	if err != nil {
		return nil, opErr("locate", err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	fd := files[0]
	return &fd, nil
}

// LocateLatestBackup returns the most recently modified backup file, or
// ErrNoBackup when none exists.
func (c *Client) LocateLatestBackup(ctx context.Context) (*provider.FileDescriptor, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	files, err := c.provider.List(ctx, provider.Query{Contains: BackupFilePrefix, Limit: 1})
	if err != nil {
		return nil, opErr("locate latest backup", err)
	}
	if len(files) == 0 {
		return nil, ErrNoBackup
	}
	fd := files[0]
	return &fd, nil
}

// Upload stores the serialized document under fileName: updates the
// existing file when one exists, creates it otherwise. Repeated backups
// under the same name never accumulate duplicate remote objects.
func (c *Client) Upload(ctx context.Context, serialized []byte, fileName string) (*provider.FileDescriptor, error) {
	existing, err := c.Locate(ctx, fileName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var fd provider.FileDescriptor
	if existing != nil {
		fd, err = c.provider.Update(ctx, existing.ID, serialized)
	} else {
		fd, err = c.provider.Create(ctx, fileName, serialized)
	}
	if err != nil {
		return nil, opErr("upload", err)
	}
	log.Info().
		Str("action", "remote_upload").
		Str("provider", c.provider.Name()).
		Str("file", fileName).
		Bool("created", existing == nil).
		Int("size", len(serialized)).
		Dur("elapsed_ms", time.Since(start)).
		Msg("upload OK")
	return &fd, nil
}

// ListBackups returns every backup file descriptor, most recent first.
func (c *Client) ListBackups(ctx context.Context) ([]provider.FileDescriptor, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	files, err := c.provider.List(ctx, provider.Query{Contains: BackupFilePrefix})
	if err != nil {
		return nil, opErr("list backups", err)
	}
	return files, nil
}

// Download fetches the raw content of the given remote file id.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	content, err := c.provider.Get(ctx, fileID)
	if err != nil {
		return nil, opErr("download", err)
	}
	return content, nil
}
