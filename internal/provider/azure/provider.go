package azure

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/config"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/provider"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/util"
)

// appFolderPrefix scopes every file to the app-private area of the
// container, outside the user's general listing.
const appFolderPrefix = "appdata/"

// Provider stores backup files as block blobs under the app-private prefix.
// File ids are full blob names.
type Provider struct {
	cfg       config.AzureConfig
	container string
	client    *azblob.Client
}

func (p *Provider) Name() string { return "azure" }

// Initialize builds the blob client. Idempotent; fails when credentials are
// missing or malformed.
func (p *Provider) Initialize(ctx context.Context) error {
	if p.client != nil {
		return nil
	}
	client, err := newClientFromConfig(p.cfg)
	if err != nil {
		return fmt.Errorf("azure init: %w", err)
	}
	if strings.TrimSpace(p.container) == "" {
		return fmt.Errorf("azure init: storage container is not configured")
	}
	p.client = client
	log.Debug().
		Str("action", "azure_init").
		Str("account", p.cfg.Account).
		Str("container", p.container).
		Msg("blob client ready")
	return nil
}

// SignOut drops the session so the next operation re-initializes.
func (p *Provider) SignOut(ctx context.Context) error {
	p.client = nil
	return nil
}

// Create stores a new file under the app-private prefix.
func (p *Provider) Create(ctx context.Context, name string, content []byte) (provider.FileDescriptor, error) {
	return p.put(ctx, appFolderPrefix+name, content)
}

// Update replaces the content of an existing file by id (blob name).
func (p *Provider) Update(ctx context.Context, id string, content []byte) (provider.FileDescriptor, error) {
	return p.put(ctx, id, content)
}

func (p *Provider) put(ctx context.Context, blobName string, content []byte) (provider.FileDescriptor, error) {
	if err := p.Initialize(ctx); err != nil {
		return provider.FileDescriptor{}, err
	}
	start := time.Now()
	resp, err := p.client.UploadBuffer(ctx, p.container, blobName, content, &azblob.UploadBufferOptions{
		Metadata: map[string]*string{"sha256": to.Ptr(util.SHA256Bytes(content))},
	})
	if err != nil {
		return provider.FileDescriptor{}, fmt.Errorf("azure upload %q: %w", blobName, err)
	}
	modified := time.Now().UTC()
	if resp.LastModified != nil {
		modified = resp.LastModified.UTC()
	}
	log.Debug().
		Str("action", "azure_upload").
		Str("container", p.container).
		Str("key", blobName).
		Int("size", len(content)).
		Dur("elapsed_ms", time.Since(start)).
		Msg("upload OK")
	return provider.FileDescriptor{
		ID:           blobName,
		Name:         strings.TrimPrefix(blobName, appFolderPrefix),
		ModifiedTime: modified,
		Size:         int64(len(content)),
	}, nil
}

// Get fetches the raw content of a file by id (blob name).
func (p *Provider) Get(ctx context.Context, id string) ([]byte, error) {
	if err := p.Initialize(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := p.client.DownloadStream(ctx, p.container, id, nil)
	if err != nil {
		return nil, fmt.Errorf("azure download %q: %w", id, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Warn().Err(cerr).Str("key", id).Msg("failed to close download stream")
		}
	}()
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azure download %q: %w", id, err)
	}
	log.Debug().
		Str("action", "azure_download").
		Str("container", p.container).
		Str("key", id).
		Int("size", len(content)).
		Dur("elapsed_ms", time.Since(start)).
		Msg("download OK")
	return content, nil
}

// List returns descriptors under the app-private prefix matching the query,
// ordered by modification time descending.
func (p *Provider) List(ctx context.Context, q provider.Query) ([]provider.FileDescriptor, error) {
	if err := p.Initialize(ctx); err != nil {
		return nil, err
	}

	var files []provider.FileDescriptor
	pager := p.client.NewListBlobsFlatPager(p.container, &azblob.ListBlobsFlatOptions{
		Prefix: to.Ptr(appFolderPrefix),
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("azure list: %w", err)
		}
		for _, it := range page.Segment.BlobItems {
			if it.Name == nil {
				continue
			}
			name := strings.TrimPrefix(*it.Name, appFolderPrefix)
			if q.Name != "" && name != q.Name {
				continue
			}
			if q.Name == "" && q.Contains != "" && !strings.Contains(name, q.Contains) {
				continue
			}
			fd := provider.FileDescriptor{ID: *it.Name, Name: name}
			if it.Properties != nil {
				if it.Properties.LastModified != nil {
					fd.ModifiedTime = it.Properties.LastModified.UTC()
				}
				if it.Properties.ContentLength != nil {
					fd.Size = *it.Properties.ContentLength
				}
			}
			files = append(files, fd)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedTime.After(files[j].ModifiedTime)
	})
	if q.Limit > 0 && len(files) > q.Limit {
		files = files[:q.Limit]
	}
	return files, nil
}
