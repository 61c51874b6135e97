package restore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/auth"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/config"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/document"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/provider"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/remote"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/store"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/version"
)

// Options controls the restore workflow.
type Options struct {
	// RemoteName is the exact backup file name. Empty or "latest" selects
	// the most recently modified backup.
	RemoteName string
	// Overwrite wipes existing mutable collections before writing.
	Overwrite bool
}

// Run locates and downloads a backup, validates it, and imports it into
// the user's document store.
func Run(ctx context.Context, cfg config.Config, client *remote.Client, st store.Store, opt Options) (*Result, error) {
	principal, err := auth.AcquirePrincipal(ctx, cfg)
	if err != nil {
		log.Error().
			Err(err).
			Str("action", "restore_auth").
			Str("method", cfg.Auth.Method).
			Msg("auth failed")
		return nil, err
	}

	// 1) Pick the remote file.
	var fd *provider.FileDescriptor
	name := strings.TrimSpace(opt.RemoteName)
	if name == "" || strings.EqualFold(name, "latest") {
		fd, err = client.LocateLatestBackup(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		fd, err = client.Locate(ctx, name)
		if err != nil {
			return nil, err
		}
		if fd == nil {
			return nil, fmt.Errorf("%w: %s", remote.ErrNoBackup, name)
		}
	}

	// 2) Download.
	dlStart := time.Now()
	payload, err := client.Download(ctx, fd.ID)
	if err != nil {
		log.Error().
			Err(err).
			Str("action", "download").
			Str("file", fd.Name).
			Dur("elapsed_ms", time.Since(dlStart)).
			Msg("download failed")
		return nil, err
	}
	log.Info().
		Str("action", "download").
		Str("file", fd.Name).
		Int("bytes", len(payload)).
		Dur("elapsed_ms", time.Since(dlStart)).
		Msg("download OK")

	// 3) Validate structure and format version before any write.
	doc, err := document.Parse(payload)
	if err != nil {
		return nil, err
	}
	if err := document.CheckVersion(doc.Metadata.Version, version.DocumentVersion); err != nil {
		log.Error().
			Err(err).
			Str("action", "restore_validate").
			Str("file", fd.Name).
			Str("document_version", doc.Metadata.Version).
			Msg("incompatible backup document")
		return nil, err
	}

	// 4) Import.
	impStart := time.Now()
	res := Import(ctx, st, principal.UID, doc, opt.Overwrite)
	log.Info().
		Str("action", "restore").
		Str("file", fd.Name).
		Bool("overwrite", opt.Overwrite).
		Int("total", res.TotalDocuments).
		Int("imported", res.ImportedDocuments).
		Dur("elapsed_ms", time.Since(impStart)).
		Msg("restore finished")
	return res, nil
}
