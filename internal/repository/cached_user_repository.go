package repository

import (
	"context"
	"encoding/json"
	"time"

	"userauth/internal/cache"
	"userauth/internal/model"
)

const (
	// usersListCacheKey prefixes the JSON-encoded result of List; the current
	// generation is appended.
	usersListCacheKey = "users:all"
	// usersListGenKey is bumped on every write. A List that read the store
	// before a write stores its result under the old generation, where no
	// later reader looks.
	usersListGenKey = "users:gen"
)

type cachedUserRepository struct {
	next  UserRepository
	cache *cache.Client
	ttl   time.Duration
}

// NewCachedUserRepository caches List results in redis for ttl and moves to a
// new generation whenever a user is created. Point lookups always reach next, so
// authentication never sees stale or deleted users. A zero ttl or nil cache
// returns next unchanged.
func NewCachedUserRepository(next UserRepository, c *cache.Client, ttl time.Duration) UserRepository {
	if c == nil || ttl <= 0 {
		return next
	}
	return &cachedUserRepository{next: next, cache: c, ttl: ttl}
}

func (r *cachedUserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.next.Create(ctx, user); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return r.next.FindByID(ctx, id)
}

func (r *cachedUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.next.FindByEmail(ctx, email)
}

func (r *cachedUserRepository) List(ctx context.Context) ([]model.User, error) {
	key := r.listKey(ctx)
	if data, _ := r.cache.Get(ctx, key); data != nil {
		var cached []model.User
		if err := json.Unmarshal(data, &cached); err == nil && cached != nil {
			return cached, nil
		}
	}

	users, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}

	// Cached entries carry no password hash (json:"-").
	if payload, err := json.Marshal(users); err == nil {
		_ = r.cache.Set(ctx, key, payload, r.ttl)
	}
	return users, nil
}

func (r *cachedUserRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	return r.next.UpdatePasswordHash(ctx, id, hash)
}

func (r *cachedUserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	if err := r.next.WithTransaction(ctx, fn); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedUserRepository) listKey(ctx context.Context) string {
	gen, _ := r.cache.Get(ctx, usersListGenKey)
	if gen == nil {
		gen = []byte("0")
	}
	return usersListCacheKey + ":" + string(gen)
}

func (r *cachedUserRepository) invalidate(ctx context.Context) {
	_ = r.cache.Incr(ctx, usersListGenKey)
}
