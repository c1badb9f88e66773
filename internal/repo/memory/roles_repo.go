package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/accounthub/internal/domain/role"
)

type RolesRepo struct {
	mu    sync.RWMutex
	items map[string]role.Role
}

func NewRolesRepo(seed ...role.Role) *RolesRepo {
	r := &RolesRepo{
		items: make(map[string]role.Role),
	}

	for _, ro := range seed {
		r.items[ro.ID] = ro
	}

	return r
}

func (r *RolesRepo) GetByID(ctx context.Context, id string) (role.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ro, ok := r.items[id]

	if !ok {
		return role.Role{}, role.ErrNotFound
	}

	return ro, nil
}

func (r *RolesRepo) GetByName(ctx context.Context, name string) (role.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ro := range r.items {
		if ro.Name == name {
			return ro, nil
		}
	}

	return role.Role{}, role.ErrNotFound
}

func (r *RolesRepo) List(ctx context.Context) ([]role.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]role.Role, 0, len(r.items))

	for _, ro := range r.items {
		out = append(out, ro)
	}

	return out, nil
}
