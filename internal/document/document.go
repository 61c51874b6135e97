package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Collection names tracked by the application. The enumeration is fixed:
// export reads exactly these, import writes exactly these.
const (
	CollectionSubjects     = "subjects"
	CollectionProgress     = "progress"
	CollectionUserSettings = "userSettings"
)

// Collections returns every collection name in processing order.
func Collections() []string {
	return []string{CollectionSubjects, CollectionProgress, CollectionUserSettings}
}

// MutableCollections returns the collections wiped in overwrite mode.
// The settings singleton is always upserted, never deleted-then-recreated.
func MutableCollections() []string {
	return []string{CollectionSubjects, CollectionProgress}
}

// ErrInvalidDocument reports a backup document that fails structural
// validation before any write is attempted.
var ErrInvalidDocument = errors.New("invalid backup document")

// Metadata identifies who exported the document, when, and in which format
// version.
type Metadata struct {
	UserID    string `json:"userId"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// Record is one stored document: its id and its JSON-serializable payload.
type Record struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// Document is the portable representation of one user's entire dataset.
// It is immutable once produced; restore only works on copies derived from it.
type Document struct {
	Metadata    Metadata            `json:"metadata"`
	Collections map[string][]Record `json:"collections"`
}

// Marshal serializes the document to its portable text form. Native
// timestamps anywhere in any record are converted in a single encode pass
// over the whole collections tree.
func Marshal(doc *Document) ([]byte, error) {
	tree := map[string]any{}
	for name, records := range doc.Collections {
		items := make([]any, 0, len(records))
		for _, r := range records {
			items = append(items, map[string]any{"id": r.ID, "data": r.Data})
		}
		tree[name] = items
	}

	out := map[string]any{
		"metadata":    map[string]any{"userId": doc.Metadata.UserID, "timestamp": doc.Metadata.Timestamp, "version": doc.Metadata.Version},
		"collections": Encode(tree),
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal backup document: %w", err)
	}
	return b, nil
}

// Parse deserializes a backup document and validates its structure.
// Record data is left in textual form; timestamp rehydration happens
// per record at import time.
func Parse(b []byte) (*Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, ok := probe["metadata"]; !ok {
		return nil, fmt.Errorf("%w: missing metadata", ErrInvalidDocument)
	}
	if _, ok := probe["collections"]; !ok {
		return nil, fmt.Errorf("%w: missing collections", ErrInvalidDocument)
	}

	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Collections == nil {
		doc.Collections = map[string][]Record{}
	}
	return &doc, nil
}

// NewMetadata builds export metadata for a user at the given instant.
func NewMetadata(userID string, now time.Time, formatVersion string) Metadata {
	return Metadata{
		UserID:    userID,
		Timestamp: now.UTC().Format(time.RFC3339),
		Version:   formatVersion,
	}
}
