package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pawpals/internal/domain/dogs"
)

type dogsRepo struct{ s *Store }

func (r dogsRepo) Create(ctx context.Context, d dogs.Dog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("dog id required")
	}
	if _, exists := r.s.dogs[d.ID]; exists {
		return errors.New("dog already exists")
	}
	r.s.dogs[d.ID] = d
	r.s.track(d.ID)
	return nil
}

func (r dogsRepo) Update(ctx context.Context, d dogs.Dog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.dogs[d.ID]; !exists {
		return dogs.ErrNotFound
	}
	r.s.dogs[d.ID] = d
	return nil
}

// Delete borra el perro y sus recordatorios bajo el mismo lock.
func (r dogsRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.dogs[id]; !exists {
		return dogs.ErrNotFound
	}
	delete(r.s.dogs, id)
	for rid, rem := range r.s.reminders {
		if rem.DogID == id {
			delete(r.s.reminders, rid)
		}
	}
	return nil
}

func (r dogsRepo) GetByID(ctx context.Context, id string) (dogs.Dog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.dogs[id]
	if !ok {
		return dogs.Dog{}, dogs.ErrNotFound
	}
	return d, nil
}

func (r dogsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]dogs.Dog, error) {
	out := r.byOwners([]string{ownerUserID})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r dogsRepo) ListByOwners(ctx context.Context, ownerUserIDs []string) ([]dogs.Dog, error) {
	out := r.byOwners(ownerUserIDs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r dogsRepo) byOwners(ownerUserIDs []string) []dogs.Dog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	want := make(map[string]struct{}, len(ownerUserIDs))
	for _, id := range ownerUserIDs {
		want[id] = struct{}{}
	}

	out := make([]dogs.Dog, 0)
	for _, d := range r.s.dogs {
		if _, ok := want[d.OwnerUserID]; ok {
			out = append(out, d)
		}
	}
	// base determinista antes del orden por fecha
	sort.Slice(out, func(i, j int) bool {
		return r.s.seqOf[out[i].ID] < r.s.seqOf[out[j].ID]
	})
	return out
}
