// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/conceptmap/core"
	"github.com/poiesic/conceptmap/storage"
)

// AnnotationRepository implements storage.AnnotationRepository using BadgerDB.
type AnnotationRepository struct {
	backend     *Backend
	ownsBackend bool
	ttl         time.Duration
}

var _ storage.AnnotationRepository = (*AnnotationRepository)(nil)

// RepositoryOption is a functional option for configuring an AnnotationRepository.
type RepositoryOption func(*AnnotationRepository) error

// WithTTL expires cached annotations after d. Zero keeps them forever.
func WithTTL(d time.Duration) RepositoryOption {
	return func(r *AnnotationRepository) error {
		if d < 0 {
			return errors.New("annotation ttl must not be negative")
		}
		r.ttl = d
		return nil
	}
}

// newAnnotationRepository creates a repository over an existing backend.
func newAnnotationRepository(backend *Backend, opts ...RepositoryOption) (*AnnotationRepository, error) {
	r := &AnnotationRepository{backend: backend}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewAnnotationRepository creates a repository over an existing backend.
// Closing the repository leaves the backend open.
func NewAnnotationRepository(backend *Backend, opts ...RepositoryOption) (storage.AnnotationRepository, error) {
	return newAnnotationRepository(backend, opts...)
}

// OpenAnnotationRepository opens a BadgerDB database at path and returns a
// repository that closes it on Close.
func OpenAnnotationRepository(path string, opts ...RepositoryOption) (storage.AnnotationRepository, error) {
	return openOwned(path, false, opts...)
}

func openOwned(path string, inMemory bool, opts ...RepositoryOption) (*AnnotationRepository, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}
	r, err := newAnnotationRepository(backend, opts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	r.ownsBackend = true
	return r, nil
}

// Close closes the backend if the repository opened it.
func (r *AnnotationRepository) Close() error {
	if !r.ownsBackend || r.backend.IsClosed() {
		return nil
	}
	return r.backend.Close()
}

// GetAnnotation retrieves the tokens cached under id.
func (r *AnnotationRepository) GetAnnotation(ctx context.Context, id core.ID) ([]core.Token, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}

	var tokens []core.Token
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeAnnotationKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			tokens, err = storage.UnmarshalTokens(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// PutAnnotation caches tokens under id.
func (r *AnnotationRepository) PutAnnotation(ctx context.Context, id core.ID, tokens []core.Token) error {
	if err := r.check(ctx); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		entry := badger.NewEntry(makeAnnotationKey(id), storage.MarshalTokens(tokens))
		if r.ttl > 0 {
			entry = entry.WithTTL(r.ttl)
		}
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteAnnotations removes every cached annotation.
func (r *AnnotationRepository) DeleteAnnotations(ctx context.Context) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	return r.backend.DropPrefix([]byte(annotationPrefix))
}

func (r *AnnotationRepository) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}
