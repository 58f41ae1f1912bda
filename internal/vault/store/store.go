// Package store defines the BlobStore port: the persistence boundary for
// EnvelopeBlob records, and an in-memory reference implementation suitable
// for tests, demos, and any host that layers its own durable adapter on top
// of the same interface.
package store

import (
	"context"
	"sync"

	vaulterrors "github.com/allisson/vaultcore/internal/errors"
	"github.com/allisson/vaultcore/internal/vault/domain"
)

// Store is the BlobStore port. All methods may suspend (hence the
// context.Context) and are safe for concurrent use by multiple engine
// instances sharing one store; the store itself guarantees only per-record
// atomicity, never cross-record ordering.
type Store interface {
	// Put persists blob under id. Implementations must reject a mismatch
	// between id and blob.ID with vaulterrors.ErrInvalidInput.
	Put(ctx context.Context, id domain.Identifier, blob domain.EnvelopeBlob) error

	// Get returns the blob stored under id, or (EnvelopeBlob{}, false, nil)
	// if none exists.
	Get(ctx context.Context, id domain.Identifier) (domain.EnvelopeBlob, bool, error)

	// Remove deletes the blob stored under id, if any. Removing a
	// nonexistent id is not an error.
	Remove(ctx context.Context, id domain.Identifier) error

	// ListIDs returns every identifier currently stored, in no particular order.
	ListIDs(ctx context.Context) ([]domain.Identifier, error)

	// Clear removes every stored blob.
	Clear(ctx context.Context) error
}

// MemoryStore is a thread-safe, process-local Store backed by sync.Map. It
// persists nothing across process restarts; hosts that need durability
// supply their own Store implementation against the same interface.
type MemoryStore struct {
	blobs sync.Map // domain.Identifier -> domain.EnvelopeBlob
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a ready-to-use, empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Put(_ context.Context, id domain.Identifier, blob domain.EnvelopeBlob) error {
	if blob.ID != id {
		return vaulterrors.Wrap(vaulterrors.ErrInvalidInput, "blob id does not match store key")
	}
	s.blobs.Store(id, blob)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id domain.Identifier) (domain.EnvelopeBlob, bool, error) {
	v, ok := s.blobs.Load(id)
	if !ok {
		return domain.EnvelopeBlob{}, false, nil
	}
	return v.(domain.EnvelopeBlob), true, nil
}

func (s *MemoryStore) Remove(_ context.Context, id domain.Identifier) error {
	s.blobs.Delete(id)
	return nil
}

func (s *MemoryStore) ListIDs(_ context.Context) ([]domain.Identifier, error) {
	ids := make([]domain.Identifier, 0)
	s.blobs.Range(func(key, _ any) bool {
		ids = append(ids, key.(domain.Identifier))
		return true
	})
	return ids, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.blobs.Range(func(key, _ any) bool {
		s.blobs.Delete(key)
		return true
	})
	return nil
}
