package repository

import (
	"context"
	"sync"
	"time"

	apperrors "userauth/internal/errors"
	"userauth/internal/model"
)

// MemoryUserRepository keeps users in process memory. Writes are serialized
// by a mutex, which makes the email uniqueness check and insert atomic.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	nextID  uint
	users   []model.User
	byEmail map[string]int
	byID    map[uint]int
	now     func() time.Time
}

var _ UserRepository = (*MemoryUserRepository)(nil)

// NewMemoryUserRepository returns an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byEmail: make(map[string]int),
		byID:    make(map[uint]int),
		now:     time.Now,
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.create(user)
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByID(id)
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByEmail(email)
}

func (r *MemoryUserRepository) List(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(), nil
}

func (r *MemoryUserRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updatePasswordHash(id, hash)
}

// WithTransaction holds the write lock for the duration of fn and undoes the
// creates made through the transactional repository if fn fails.
func (r *MemoryUserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &memoryTx{store: r}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// Delete removes a user. Tokens already issued for it keep verifying but no
// longer resolve to a user.
func (r *MemoryUserRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delete(id)
}

func (r *MemoryUserRepository) create(user *model.User) error {
	if _, exists := r.byEmail[user.Email]; exists {
		return apperrors.ErrDuplicateEmail
	}
	r.nextID++
	now := r.now().UTC()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users = append(r.users, *user)
	r.byEmail[user.Email] = len(r.users) - 1
	r.byID[user.ID] = len(r.users) - 1
	return nil
}

func (r *MemoryUserRepository) findByID(id uint) (*model.User, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u := r.users[i]
	return &u, nil
}

func (r *MemoryUserRepository) findByEmail(email string) (*model.User, error) {
	i, ok := r.byEmail[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u := r.users[i]
	return &u, nil
}

func (r *MemoryUserRepository) list() []model.User {
	out := make([]model.User, len(r.users))
	copy(out, r.users)
	return out
}

func (r *MemoryUserRepository) updatePasswordHash(id uint, hash string) error {
	i, ok := r.byID[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	r.users[i].PasswordHash = hash
	r.users[i].UpdatedAt = r.now().UTC()
	return nil
}

func (r *MemoryUserRepository) delete(id uint) error {
	i, ok := r.byID[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	r.reindex()
	return nil
}

func (r *MemoryUserRepository) reindex() {
	clear(r.byEmail)
	clear(r.byID)
	for i, u := range r.users {
		r.byEmail[u.Email] = i
		r.byID[u.ID] = i
	}
}

// memoryTx runs against a store whose write lock is already held.
type memoryTx struct {
	store   *MemoryUserRepository
	created []uint
	updated map[uint]string
}

func (t *memoryTx) Create(ctx context.Context, user *model.User) error {
	if err := t.store.create(user); err != nil {
		return err
	}
	t.created = append(t.created, user.ID)
	return nil
}

func (t *memoryTx) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return t.store.findByID(id)
}

func (t *memoryTx) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return t.store.findByEmail(email)
}

func (t *memoryTx) List(ctx context.Context) ([]model.User, error) {
	return t.store.list(), nil
}

func (t *memoryTx) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	prev, err := t.store.findByID(id)
	if err != nil {
		return err
	}
	if t.updated == nil {
		t.updated = make(map[uint]string)
	}
	if _, seen := t.updated[id]; !seen {
		t.updated[id] = prev.PasswordHash
	}
	return t.store.updatePasswordHash(id, hash)
}

func (t *memoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	return fn(ctx, t)
}

func (t *memoryTx) rollback() {
	for id, hash := range t.updated {
		_ = t.store.updatePasswordHash(id, hash)
	}
	for i := len(t.created) - 1; i >= 0; i-- {
		_ = t.store.delete(t.created[i])
	}
}
