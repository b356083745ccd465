package main

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no document matches the lookup.
var ErrNotFound = errors.New("document not found")

// Store is the CRUD engine the pipeline fronts. Implementations must be safe
// for concurrent use. The pipeline only reads through All and FindByTitle;
// handlers own the writes.
type Store interface {
	// All returns every document in the collection.
	All(ctx context.Context) ([]Document, error)

	// Get retrieves the document with the given id.
	// Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (Document, error)

	// FindByTitle returns the first document whose title equals title.
	// Returns ErrNotFound when there is none.
	FindByTitle(ctx context.Context, title string) (Document, error)

	// Insert stores a new document. The document must carry an integer id;
	// inserting an id that already exists is an error.
	Insert(ctx context.Context, doc Document) error

	// Replace swaps the whole document with the given id for doc, keeping the
	// id. Returns the stored document, or ErrNotFound.
	Replace(ctx context.Context, id int64, doc Document) (Document, error)

	// Patch merges fields into the document with the given id and returns the
	// result, or ErrNotFound.
	Patch(ctx context.Context, id int64, fields Document) (Document, error)

	// Delete removes the document with the given id, or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error
}
