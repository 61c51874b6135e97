package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	user_id    TEXT NOT NULL,
	collection TEXT NOT NULL,
	doc_id     TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, collection, doc_id)
);
`

// Store is a sqlite-backed document store. Each document is a JSON payload
// keyed by (user, collection, id); a batch maps to one transaction.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init document store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

type row struct {
	DocID string `db:"doc_id"`
	Data  string `db:"data"`
}

func (r row) document() (store.Document, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(r.Data), &data); err != nil {
		return store.Document{}, fmt.Errorf("decode document %s: %w", r.DocID, err)
	}
	return store.Document{ID: r.DocID, Data: data}, nil
}

// List returns every document in the user's collection.
func (s *Store) List(ctx context.Context, userID, collection string) ([]store.Document, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		`SELECT doc_id, data FROM documents WHERE user_id = ? AND collection = ? ORDER BY doc_id`,
		userID, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	docs := make([]store.Document, 0, len(rows))
	for _, r := range rows {
		d, err := r.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// Get returns a single document or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, userID, collection, id string) (*store.Document, error) {
	var r row
	err := s.db.GetContext(ctx, &r,
		`SELECT doc_id, data FROM documents WHERE user_id = ? AND collection = ? AND doc_id = ?`,
		userID, collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	d, err := r.document()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Set upserts a single document.
func (s *Store) Set(ctx context.Context, userID, collection, id string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (user_id, collection, doc_id, data, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, collection, doc_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		userID, collection, id, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a single document; missing documents are not an error.
func (s *Store) Delete(ctx context.Context, userID, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE user_id = ? AND collection = ? AND doc_id = ?`,
		userID, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// NewBatch starts an empty write batch backed by a single transaction.
func (s *Store) NewBatch() store.Batch {
	return &batch{db: s.db}
}

type batchOp struct {
	del        bool
	userID     string
	collection string
	id         string
	data       map[string]any
}

type batch struct {
	db  *sqlx.DB
	ops []batchOp
}

func (b *batch) Set(userID, collection, id string, data map[string]any) {
	b.ops = append(b.ops, batchOp{userID: userID, collection: collection, id: id, data: data})
}

func (b *batch) Delete(userID, collection, id string) {
	b.ops = append(b.ops, batchOp{del: true, userID: userID, collection: collection, id: id})
}

func (b *batch) Len() int { return len(b.ops) }

// Commit applies all buffered operations in one transaction.
func (b *batch) Commit(ctx context.Context) error {
	if len(b.ops) > store.MaxBatchOps {
		return fmt.Errorf("%w: %d ops", store.ErrBatchTooLarge, len(b.ops))
	}
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	for _, op := range b.ops {
		if op.del {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM documents WHERE user_id = ? AND collection = ? AND doc_id = ?`,
				op.userID, op.collection, op.id); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("batch delete %s/%s: %w", op.collection, op.id, err)
			}
			continue
		}
		payload, err := json.Marshal(op.data)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("batch encode %s/%s: %w", op.collection, op.id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (user_id, collection, doc_id, data, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (user_id, collection, doc_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
			op.userID, op.collection, op.id, string(payload), time.Now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("batch set %s/%s: %w", op.collection, op.id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}
