package store

import (
	"context"
	"errors"
)

var (
	// ErrDocumentNotFound is returned when a required document does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrConflict is returned when a document changed between load and save.
	ErrConflict = errors.New("document changed concurrently")
	// ErrStorage wraps failures of the underlying byte store.
	ErrStorage = errors.New("storage error")
)

// Version identifies the stored revision of a document. The empty version
// stands for "document does not exist".
type Version string

// Storage is a durable byte store of whole named documents.
type Storage interface {
	// Load returns the document bytes and their version, or ErrDocumentNotFound.
	Load(ctx context.Context, name string) ([]byte, Version, error)
	// Save replaces the document when its stored version still equals
	// expected, and fails with ErrConflict otherwise.
	Save(ctx context.Context, name string, data []byte, expected Version) (Version, error)
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// Seed copies each named document that dst lacks from src. Documents src
// does not have either are skipped. It returns the names that were copied.
func Seed(ctx context.Context, dst, src Storage, names ...string) ([]string, error) {
	var copied []string
	for _, name := range names {
		_, _, err := dst.Load(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrDocumentNotFound) {
			return copied, err
		}

		data, _, err := src.Load(ctx, name)
		if errors.Is(err, ErrDocumentNotFound) {
			continue
		}
		if err != nil {
			return copied, err
		}
		if _, err := dst.Save(ctx, name, data, ""); err != nil && !errors.Is(err, ErrConflict) {
			return copied, err
		}
		copied = append(copied, name)
	}
	return copied, nil
}
