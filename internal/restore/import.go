package restore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/document"
	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/store"
)

// importBatchSize stays safely under the store's hard per-batch ceiling of
// 500 operations.
const importBatchSize = 400

// Result accumulates import bookkeeping. It is created once per import,
// mutated additively per collection, and returned even when collections
// fail.
type Result struct {
	TotalDocuments    int      `json:"totalDocuments"`
	ImportedDocuments int      `json:"importedDocuments"`
	Errors            []string `json:"errors"`
}

// Import writes a parsed backup document into the user's document store.
// Restore is best-effort per collection: a failure in one collection is
// recorded and the next collection is still attempted. Only structural
// validation and authentication abort the operation before any write.
func Import(ctx context.Context, st store.Store, userID string, doc *document.Document, overwrite bool) *Result {
	res := &Result{Errors: []string{}}

	if overwrite {
		wipeMutableCollections(ctx, st, userID)
	}

	for _, name := range document.Collections() {
		records := doc.Collections[name]

		if name == document.CollectionUserSettings {
			importSettings(ctx, st, userID, records, res)
			continue
		}

		importCollection(ctx, st, userID, name, records, res)
	}

	log.Info().
		Str("action", "import").
		Int("total", res.TotalDocuments).
		Int("imported", res.ImportedDocuments).
		Int("failed_collections", len(res.Errors)).
		Msg("import finished")
	return res
}

// importSettings upserts the first settings record, keyed by the user's
// own id. The singleton write path never goes through a batch.
func importSettings(ctx context.Context, st store.Store, userID string, records []document.Record, res *Result) {
	if len(records) == 0 {
		return
	}
	res.TotalDocuments++

	data := document.DecodeRecord(records[0].Data)
	if err := st.Set(ctx, userID, document.CollectionUserSettings, userID, data); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", document.CollectionUserSettings, err))
		log.Warn().
			Err(err).
			Str("action", "import_settings").
			Msg("settings upsert failed")
		return
	}
	res.ImportedDocuments++
}

// importCollection writes one collection in capped batches. The full record
// count goes into TotalDocuments before any write; ImportedDocuments grows
// only by committed batches.
func importCollection(ctx context.Context, st store.Store, userID, name string, records []document.Record, res *Result) {
	res.TotalDocuments += len(records)
	if len(records) == 0 {
		return
	}

	batch := st.NewBatch()
	commits := 0
	commit := func() error {
		n := batch.Len()
		if n == 0 {
			return nil
		}
		if err := batch.Commit(ctx); err != nil {
			return err
		}
		commits++
		res.ImportedDocuments += n
		batch = st.NewBatch()
		return nil
	}

	for _, r := range records {
		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		batch.Set(userID, name, id, document.DecodeRecord(r.Data))
		if batch.Len() >= importBatchSize {
			if err := commit(); err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", name, err))
				log.Warn().Err(err).Str("action", "import_collection").Str("collection", name).Msg("batch commit failed")
				return
			}
		}
	}
	if err := commit(); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", name, err))
		log.Warn().Err(err).Str("action", "import_collection").Str("collection", name).Msg("batch commit failed")
		return
	}

	log.Debug().
		Str("action", "import_collection").
		Str("collection", name).
		Int("records", len(records)).
		Int("commits", commits).
		Msg("collection imported")
}

// wipeMutableCollections deletes the user's existing records before an
// overwrite restore. Deletion failures are logged but never abort the
// restore. The settings singleton is upserted, not wiped.
func wipeMutableCollections(ctx context.Context, st store.Store, userID string) {
	for _, name := range document.MutableCollections() {
		docs, err := st.List(ctx, userID, name)
		if err != nil {
			log.Warn().Err(err).Str("action", "wipe_collection").Str("collection", name).Msg("listing for wipe failed")
			continue
		}

		batch := st.NewBatch()
		flush := func() {
			if batch.Len() == 0 {
				return
			}
			if err := batch.Commit(ctx); err != nil {
				log.Warn().Err(err).Str("action", "wipe_collection").Str("collection", name).Msg("delete batch failed")
			}
			batch = st.NewBatch()
		}
		for _, d := range docs {
			batch.Delete(userID, name, d.ID)
			if batch.Len() >= importBatchSize {
				flush()
			}
		}
		flush()

		log.Debug().
			Str("action", "wipe_collection").
			Str("collection", name).
			Int("records", len(docs)).
			Msg("collection wiped")
	}
}
