package reminders

import (
	"context"
	"strings"
	"time"

	"pawpals/internal/platform/apperr"
	"pawpals/internal/platform/logger"
	"pawpals/internal/platform/optional"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = apperr.NotFound("reminder not found")
	ErrDogNotFound      = apperr.NotFound("dog not found")
	ErrInvalidType      = apperr.Validation("reminder_type must be one of deworming, vaccination, bath")
	ErrInvalidCycle     = apperr.Validation("cycle_days must be at least 1")
	ErrLastDateRequired = apperr.Validation("last_date is required")
)

type Service struct {
	repo     Repository
	dogs     DogOwnerLookup
	notifier Notifier
	now      func() time.Time
}

// NewService: notifier puede ser nil.
func NewService(repo Repository, dogs DogOwnerLookup, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		dogs:     dogs,
		notifier: notifier,
		now:      time.Now,
	}
}

type UpsertInput struct {
	Type      Type
	LastDate  *time.Time
	CycleDays int
	Notes     string
}

// Upsert crea o sobrescribe el recordatorio del tipo dado. created=true si insertó.
func (s *Service) Upsert(ctx context.Context, ownerUserID, dogID string, in UpsertInput) (Reminder, bool, error) {
	if !in.Type.Valid() {
		return Reminder{}, false, ErrInvalidType
	}
	if in.CycleDays < 1 {
		return Reminder{}, false, ErrInvalidCycle
	}
	if in.LastDate == nil {
		return Reminder{}, false, ErrLastDateRequired
	}
	if err := s.authorize(ctx, ownerUserID, dogID); err != nil {
		return Reminder{}, false, err
	}

	now := s.now().UTC()
	last := DateOnly(*in.LastDate)
	r := Reminder{
		ID:        uuid.NewString(),
		DogID:     dogID,
		Type:      in.Type,
		LastDate:  &last,
		NextDate:  nextFor(&last, in.CycleDays),
		CycleDays: in.CycleDays,
		Notes:     strings.TrimSpace(in.Notes),
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	saved, created, err := s.repo.Upsert(ctx, r)
	if err != nil {
		return Reminder{}, false, err
	}
	s.schedule(ctx, saved)
	return saved, created, nil
}

// PatchInput: LastDate/Notes con presencia (null limpia); nil en punteros = no tocar.
type PatchInput struct {
	LastDate  optional.Field[time.Time]
	CycleDays *int
	Notes     optional.Field[string]
	Enabled   *bool
}

func (s *Service) Patch(ctx context.Context, ownerUserID, dogID, id string, in PatchInput) (Reminder, error) {
	r, err := s.Get(ctx, ownerUserID, dogID, id)
	if err != nil {
		return Reminder{}, err
	}

	if in.LastDate.Set {
		r.LastDate = nil
		if in.LastDate.Value != nil {
			d := DateOnly(*in.LastDate.Value)
			r.LastDate = &d
		}
	}
	if in.CycleDays != nil {
		if *in.CycleDays < 1 {
			return Reminder{}, ErrInvalidCycle
		}
		r.CycleDays = *in.CycleDays
	}
	if in.Notes.Set {
		r.Notes = ""
		if in.Notes.Value != nil {
			r.Notes = strings.TrimSpace(*in.Notes.Value)
		}
	}
	if in.Enabled != nil {
		r.Enabled = *in.Enabled
	}

	r.NextDate = nextFor(r.LastDate, r.CycleDays)
	r.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, r); err != nil {
		return Reminder{}, err
	}
	s.schedule(ctx, r)
	return r, nil
}

func (s *Service) Get(ctx context.Context, ownerUserID, dogID, id string) (Reminder, error) {
	if err := s.authorize(ctx, ownerUserID, dogID); err != nil {
		return Reminder{}, err
	}
	return s.repo.GetByID(ctx, dogID, id)
}

func (s *Service) List(ctx context.Context, ownerUserID, dogID string) ([]Reminder, error) {
	if err := s.authorize(ctx, ownerUserID, dogID); err != nil {
		return nil, err
	}
	return s.repo.ListByDog(ctx, dogID)
}

func (s *Service) Delete(ctx context.Context, ownerUserID, dogID, id string) error {
	if err := s.authorize(ctx, ownerUserID, dogID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, dogID, id)
}

// authorize: perro inexistente o ajeno => not found.
func (s *Service) authorize(ctx context.Context, ownerUserID, dogID string) error {
	if strings.TrimSpace(dogID) == "" {
		return ErrDogNotFound
	}
	owner, err := s.dogs.OwnerOf(ctx, dogID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return ErrDogNotFound
		}
		return err
	}
	if owner != ownerUserID {
		return ErrDogNotFound
	}
	return nil
}

// schedule publica el vencimiento; un fallo del broker no invalida la escritura.
func (s *Service) schedule(ctx context.Context, r Reminder) {
	if s.notifier == nil || !r.Enabled || r.NextDate == nil {
		return
	}
	if err := s.notifier.ReminderScheduled(ctx, r, *r.NextDate); err != nil {
		logger.FromContext(ctx).Warn("reminder notification failed", map[string]any{
			"reminder_id": r.ID,
			"dog_id":      r.DogID,
			"error":       err,
		})
	}
}
