package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/accounthub/internal/domain/user"
)

// UsersRepo is a map-backed stand-in for the postgres repo, used in tests
// and local development without a database.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))

	for _, u := range r.items {
		out = append(out, u)
	}

	// stable order to match the postgres repo
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *UsersRepo) EmailInUse(ctx context.Context, email, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}

	return false, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	for _, other := range r.items {
		if other.Email == req.Email && other.ID != id {
			return user.User{}, user.ErrEmailTaken
		}
	}

	u.FirstName = req.FirstName
	u.LastName = req.LastName
	u.Email = req.Email
	u.BirthDate = req.BirthDate
	u.PhoneNumber = req.PhoneNumber
	u.RoleID = req.RoleID

	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}

	u.UpdatedAt = time.Now().UTC()

	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
