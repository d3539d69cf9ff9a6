// Package memstore keeps users and thoughts in process memory. Identifiers
// have the same shape as MongoDB object ids so clients cannot tell the
// backends apart.
package memstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Idahel/js-project-api/internal/store"
)

// Store holds both collections behind one lock.
type Store struct {
	mu       sync.RWMutex
	users    []userRecord
	thoughts []thoughtRecord
	seq      int64
}

func New() *Store {
	return &Store{}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

// Thoughts returns the thought repository view of the store.
func (s *Store) Thoughts() *ThoughtRepository {
	return &ThoughtRepository{s: s}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func newID() string {
	return bson.NewObjectID().Hex()
}

func checkID(id string) error {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return store.ErrInvalidID
	}
	return nil
}
