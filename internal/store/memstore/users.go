package memstore

import (
	"context"
	"strings"
	"time"

	"github.com/Idahel/js-project-api/internal/store"
	"github.com/Idahel/js-project-api/types"
)

type userRecord struct {
	user types.User
}

// UserRepository is the in-memory user collection.
type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	if err := ctx.Err(); err != nil {
		return types.User{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rec := range r.s.users {
		if rec.user.Name == user.Name || strings.EqualFold(rec.user.Email, user.Email) || rec.user.AccessToken == user.AccessToken {
			return types.User{}, store.ErrConflict
		}
	}

	user.ID = newID()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.s.users = append(r.s.users, userRecord{user: user})
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return r.find(ctx, func(u types.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) GetByAccessToken(ctx context.Context, token string) (types.User, error) {
	return r.find(ctx, func(u types.User) bool { return u.AccessToken == token })
}

func (r *UserRepository) find(ctx context.Context, match func(types.User) bool) (types.User, error) {
	if err := ctx.Err(); err != nil {
		return types.User{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.users {
		if match(rec.user) {
			return rec.user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}
