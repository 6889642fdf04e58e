package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pawpals/internal/domain/users"
	"pawpals/internal/platform/apperr"
)

var ErrPhoneTaken = apperr.Conflict("phone already registered")

type usersRepo struct{ s *Store }

func (r usersRepo) Create(ctx context.Context, u users.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.s.users[u.ID]; exists {
		return errors.New("user already exists")
	}
	if u.Phone != "" {
		for _, cur := range r.s.users {
			if cur.Phone == u.Phone {
				return ErrPhoneTaken
			}
		}
	}
	r.s.users[u.ID] = u
	r.s.track(u.ID)
	return nil
}

func (r usersRepo) Update(ctx context.Context, u users.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[u.ID]; !exists {
		return users.ErrNotFound
	}
	r.s.users[u.ID] = u
	return nil
}

func (r usersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r usersRepo) GetByPhone(ctx context.Context, phone string) (users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (r usersRepo) GetMany(ctx context.Context, ids []string) (map[string]users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string]users.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r usersRepo) List(ctx context.Context, limit, offset int) ([]users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]users.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		return r.s.seqOf[all[i].ID] < r.s.seqOf[all[j].ID]
	})
	return page(all, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
