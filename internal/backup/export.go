package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/document"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/store"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/version"
)

// Export reads every tracked collection for the user and assembles a
// backup document. Export is all-or-nothing: a failure reading any
// collection aborts the whole export with a wrapped error.
//
// The settings singleton keeps at most one record, keyed by the user's own
// id regardless of how it was stored.
func Export(ctx context.Context, st store.Store, userID string) (*document.Document, error) {
	doc := &document.Document{
		Metadata:    document.NewMetadata(userID, time.Now(), version.DocumentVersion),
		Collections: map[string][]document.Record{},
	}

	for _, name := range document.Collections() {
		docs, err := st.List(ctx, userID, name)
		if err != nil {
			return nil, fmt.Errorf("export collection %s: %w", name, err)
		}

		if name == document.CollectionUserSettings {
			records := []document.Record{}
			if len(docs) > 0 {
				// A misconfigured provider may return extra records; only
				// the first one survives.
				records = append(records, document.Record{ID: userID, Data: docs[0].Data})
			}
			doc.Collections[name] = records
			continue
		}

		records := make([]document.Record, 0, len(docs))
		for _, d := range docs {
			records = append(records, document.Record{ID: d.ID, Data: d.Data})
		}
		doc.Collections[name] = records

		log.Debug().
			Str("action", "export_collection").
			Str("collection", name).
			Int("records", len(records)).
			Msg("collection assembled")
	}

	return doc, nil
}
