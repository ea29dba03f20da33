// Package store implements whole-document read-modify-write over a Storage.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"sweetshop/internal/xmldoc"
)

// Document names a stored document and the root element it must have.
// Optional documents read as an empty root while they do not exist.
type Document struct {
	Name     string
	Root     string
	Optional bool
}

var (
	Products = Document{Name: "products", Root: "products"}
	Carts    = Document{Name: "carts", Root: "carts", Optional: true}
	Users    = Document{Name: "users", Root: "users", Optional: true}
	Orders   = Document{Name: "orders", Root: "orders", Optional: true}
)

const defaultMaxRetries = 3

// Store serializes read-modify-write cycles per document inside the process
// and retries cycles that lose a version race against other processes.
type Store struct {
	storage    Storage
	maxRetries int
	log        zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Store)

// WithMaxRetries sets how many times a conflicting cycle is re-run.
func WithMaxRetries(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:    storage,
		maxRetries: defaultMaxRetries,
		log:        zerolog.Nop(),
		locks:      make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks that the underlying storage is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

func (s *Store) lock(name string) func() {
	s.mu.Lock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// WithDocument loads doc, lets mutate edit the body of its root element in
// place and persists the tree when mutate reports a change. The document lock
// is held for the whole cycle. When the write loses a race against another
// process the cycle is re-run on fresh data, up to the store's retry limit,
// so mutate must derive its result only from the tree it is given.
func WithDocument[R any](ctx context.Context, s *Store, doc Document, mutate func(root xmldoc.M) (R, bool, error)) (R, error) {
	for attempt := 0; ; attempt++ {
		result, err := cycle(ctx, s, doc, mutate)
		if err == nil || !errors.Is(err, ErrConflict) || attempt >= s.maxRetries {
			return result, err
		}
		s.log.Warn().
			Str("area", "store").
			Str("document", doc.Name).
			Int("attempt", attempt+1).
			Msg("write conflict, retrying")
	}
}

// Read runs read against the current content of doc without writing.
func Read[R any](ctx context.Context, s *Store, doc Document, read func(root xmldoc.M) (R, error)) (R, error) {
	return WithDocument(ctx, s, doc, func(root xmldoc.M) (R, bool, error) {
		result, err := read(root)
		return result, false, err
	})
}

func cycle[R any](ctx context.Context, s *Store, doc Document, mutate func(root xmldoc.M) (R, bool, error)) (R, error) {
	var zero R

	unlock := s.lock(doc.Name)
	defer unlock()

	tree, version, err := s.load(ctx, doc)
	if err != nil {
		return zero, err
	}
	root, ok := tree.Root(doc.Root)
	if !ok {
		return zero, fmt.Errorf("%w: %s: expected root element <%s>", xmldoc.ErrMalformedDocument, doc.Name, doc.Root)
	}

	result, changed, err := mutate(root)
	if err != nil || !changed {
		return result, err
	}

	raw, err := xmldoc.Encode(tree)
	if err != nil {
		return zero, fmt.Errorf("%w: encode %s: %w", ErrStorage, doc.Name, err)
	}
	if _, err := s.storage.Save(ctx, doc.Name, raw, version); err != nil {
		return zero, err
	}

	s.log.Debug().
		Str("area", "store").
		Str("document", doc.Name).
		Int("bytes", len(raw)).
		Msg("document written")
	return result, nil
}

func (s *Store) load(ctx context.Context, doc Document) (xmldoc.M, Version, error) {
	raw, version, err := s.storage.Load(ctx, doc.Name)
	if errors.Is(err, ErrDocumentNotFound) && doc.Optional {
		return xmldoc.M{doc.Root: xmldoc.M{}}, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	tree, err := xmldoc.Decode(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", doc.Name, err)
	}
	return tree, version, nil
}
