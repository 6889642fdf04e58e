package reminders

import (
	"context"
	"time"
)

type Repository interface {
	// Upsert inserta o sobrescribe por (DogID, Type). created=true si insertó.
	Upsert(ctx context.Context, r Reminder) (Reminder, bool, error)
	Update(ctx context.Context, r Reminder) error
	GetByID(ctx context.Context, dogID, id string) (Reminder, error)
	ListByDog(ctx context.Context, dogID string) ([]Reminder, error)
	Delete(ctx context.Context, dogID, id string) error
}

// DogOwnerLookup evita importar dogs desde reminders.
type DogOwnerLookup interface {
	OwnerOf(ctx context.Context, dogID string) (string, error)
}

// Notifier agenda el aviso de vencimiento (p.ej. mensaje diferido en RabbitMQ).
type Notifier interface {
	ReminderScheduled(ctx context.Context, r Reminder, dueAt time.Time) error
}
