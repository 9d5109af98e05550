// Package upload keeps uploaded datasets between requests.
//
// A [Store] serializes datasets with pkg/io and keeps them in a
// [cache.Cache] under random UUID ids. Entries expire after the store's
// TTL; an expired or unknown id is a FILE_NOT_FOUND error.
package upload

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/graphypad/pkg/cache"
	"github.com/matzehuels/graphypad/pkg/dataset"
	"github.com/matzehuels/graphypad/pkg/errors"
	dsio "github.com/matzehuels/graphypad/pkg/io"
)

// DefaultTTL is how long an upload is kept after it was last written.
const DefaultTTL = 24 * time.Hour

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the upload lifetime. Zero keeps uploads until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithKeyer sets the key builder (default cache.NewDefaultKeyer()).
func WithKeyer(k cache.Keyer) Option {
	return func(s *Store) { s.keyer = k }
}

// Store keeps uploaded datasets in a cache backend.
type Store struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewStore returns a Store backed by c.
func NewStore(c cache.Cache, opts ...Option) *Store {
	s := &Store{cache: c, keyer: cache.NewDefaultKeyer(), ttl: DefaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores ds under a new id and returns the id.
func (s *Store) Put(ctx context.Context, ds *dataset.Dataset) (string, error) {
	id := uuid.NewString()
	if err := s.write(ctx, id, ds); err != nil {
		return "", err
	}
	return id, nil
}

// Get loads the dataset stored under id.
func (s *Store) Get(ctx context.Context, id string) (*dataset.Dataset, error) {
	if !validID(id) {
		return nil, notFound(id)
	}
	data, ok, err := s.cache.Get(ctx, s.keyer.UploadKey(id))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load upload %s", id)
	}
	if !ok {
		return nil, notFound(id)
	}
	ds, err := dsio.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode upload %s", id)
	}
	return ds, nil
}

// Replace overwrites the dataset stored under an existing id and renews
// its lifetime.
func (s *Store) Replace(ctx context.Context, id string, ds *dataset.Dataset) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.write(ctx, id, ds)
}

// Delete removes an upload. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	if err := s.cache.Delete(ctx, s.keyer.UploadKey(id)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete upload %s", id)
	}
	return nil
}

func (s *Store) write(ctx context.Context, id string, ds *dataset.Dataset) error {
	data, err := dsio.Marshal(ds)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode upload")
	}
	if err := s.cache.Set(ctx, s.keyer.UploadKey(id), data, s.ttl); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store upload %s", id)
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeFileNotFound, "upload %q not found or expired", id)
}
