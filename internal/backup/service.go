package backup

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/auth"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/config"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/document"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/remote"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/store"
)

// Options controls backup output and naming.
type Options struct {
	// FileSuffix is appended to the backup file prefix
	// (default: current UTC date).
	FileSuffix string
}

// Result contains the produced document, its serialized form, and the
// remote file name it should be uploaded under.
type Result struct {
	FileName string
	Payload  []byte
	Records  int
}

// Create resolves the principal, exports their dataset and serializes it.
// Upload is the caller's job; this keeps the export testable without a
// provider.
func Create(ctx context.Context, cfg config.Config, st store.Store, opt Options) (Result, error) {
	var res Result

	principal, err := auth.AcquirePrincipal(ctx, cfg)
	if err != nil {
		log.Error().
			Err(err).
			Str("action", "backup_auth").
			Str("method", cfg.Auth.Method).
			Msg("auth failed")
		return res, err
	}

	start := time.Now()
	doc, err := Export(ctx, st, principal.UID)
	if err != nil {
		log.Error().
			Err(err).
			Str("action", "export").
			Dur("elapsed_ms", time.Since(start)).
			Msg("export failed")
		return res, err
	}

	payload, err := document.Marshal(doc)
	if err != nil {
		return res, err
	}

	records := 0
	for _, recs := range doc.Collections {
		records += len(recs)
	}

	res.FileName = remote.BackupFileName(opt.FileSuffix, time.Now())
	res.Payload = payload
	res.Records = records

	log.Info().
		Str("action", "export").
		Str("file", res.FileName).
		Int("records", records).
		Int("bytes", len(payload)).
		Dur("elapsed_ms", time.Since(start)).
		Msg("export OK")

	return res, nil
}
