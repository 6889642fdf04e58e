package memory

import (
	"context"
	"sort"

	"pawpals/internal/domain/reminders"
)

type remindersRepo struct{ s *Store }

// Upsert por (DogID, Type): conserva ID, CreatedAt y Enabled del existente.
func (r remindersRepo) Upsert(ctx context.Context, rem reminders.Reminder) (reminders.Reminder, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, cur := range r.s.reminders {
		if cur.DogID != rem.DogID || cur.Type != rem.Type {
			continue
		}
		cur.LastDate = rem.LastDate
		cur.NextDate = rem.NextDate
		cur.CycleDays = rem.CycleDays
		cur.Notes = rem.Notes
		cur.UpdatedAt = rem.UpdatedAt
		r.s.reminders[id] = cur
		return cur, false, nil
	}

	r.s.reminders[rem.ID] = rem
	r.s.track(rem.ID)
	return rem, true, nil
}

func (r remindersRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.reminders[rem.ID]
	if !ok || cur.DogID != rem.DogID {
		return reminders.ErrNotFound
	}
	r.s.reminders[rem.ID] = rem
	return nil
}

func (r remindersRepo) GetByID(ctx context.Context, dogID, id string) (reminders.Reminder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rem, ok := r.s.reminders[id]
	if !ok || rem.DogID != dogID {
		return reminders.Reminder{}, reminders.ErrNotFound
	}
	return rem, nil
}

func (r remindersRepo) ListByDog(ctx context.Context, dogID string) ([]reminders.Reminder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]reminders.Reminder, 0)
	for _, rem := range r.s.reminders {
		if rem.DogID == dogID {
			out = append(out, rem)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func (r remindersRepo) Delete(ctx context.Context, dogID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rem, ok := r.s.reminders[id]
	if !ok || rem.DogID != dogID {
		return reminders.ErrNotFound
	}
	delete(r.s.reminders, id)
	return nil
}
