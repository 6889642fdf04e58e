package dogs

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"pawpals/internal/platform/apperr"
	"pawpals/internal/platform/optional"
	"pawpals/internal/ports/moderation"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = apperr.NotFound("dog not found")
	ErrNameRequired   = apperr.Validation("name is required")
	ErrNameTooLong    = apperr.Validation("name must be at most 50 characters")
	ErrInvalidGender  = apperr.Validation("gender must be one of male, female, unknown")
	ErrInvalidWeight  = apperr.Validation("weight_kg must be between 0 and 200")
	ErrBlockedContent = apperr.Validation("content contains blocked words, please edit and retry")
)

const maxNameRunes = 50

type Service struct {
	repo      Repository
	moderator moderation.Moderator
	now       func() time.Time
}

func NewService(repo Repository, moderator moderation.Moderator) *Service {
	if moderator == nil {
		moderator = moderation.AllowAll{}
	}
	return &Service{
		repo:      repo,
		moderator: moderator,
		now:       time.Now,
	}
}

type CreateInput struct {
	Name              string
	Breed             string
	Gender            Gender
	Birthday          *time.Time
	Sterilized        *bool
	WeightKg          *float64
	Personality       string
	VaccinationStatus string
	Avatar            string
	Notes             string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Dog, error) {
	d := Dog{
		OwnerUserID:       ownerUserID,
		Name:              strings.TrimSpace(in.Name),
		Breed:             strings.TrimSpace(in.Breed),
		Gender:            in.Gender,
		Birthday:          in.Birthday,
		Sterilized:        in.Sterilized,
		WeightKg:          in.WeightKg,
		Personality:       strings.TrimSpace(in.Personality),
		VaccinationStatus: strings.TrimSpace(in.VaccinationStatus),
		Avatar:            strings.TrimSpace(in.Avatar),
		Notes:             strings.TrimSpace(in.Notes),
	}
	if err := s.validate(ctx, d); err != nil {
		return Dog{}, err
	}

	now := s.now().UTC()
	d.ID = uuid.NewString()
	d.CreatedAt = now
	d.UpdatedAt = now

	if err := s.repo.Create(ctx, d); err != nil {
		return Dog{}, err
	}
	return d, nil
}

// Get devuelve el perro solo si pertenece a ownerUserID; si no, not found.
func (s *Service) Get(ctx context.Context, ownerUserID, id string) (Dog, error) {
	d, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Dog{}, err
	}
	if d.OwnerUserID != ownerUserID {
		return Dog{}, ErrNotFound
	}
	return d, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Dog, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// UpdateInput: campos con presencia; Value nil en campos de texto => vaciar.
type UpdateInput struct {
	Name              optional.Field[string]
	Breed             optional.Field[string]
	Gender            optional.Field[Gender]
	Birthday          optional.Field[time.Time]
	Sterilized        optional.Field[bool]
	WeightKg          optional.Field[float64]
	Personality       optional.Field[string]
	VaccinationStatus optional.Field[string]
	Avatar            optional.Field[string]
	Notes             optional.Field[string]
}

func (s *Service) Update(ctx context.Context, ownerUserID, id string, in UpdateInput) (Dog, error) {
	d, err := s.Get(ctx, ownerUserID, id)
	if err != nil {
		return Dog{}, err
	}

	d.Name = applyText(in.Name, d.Name)
	d.Breed = applyText(in.Breed, d.Breed)
	d.Personality = applyText(in.Personality, d.Personality)
	d.VaccinationStatus = applyText(in.VaccinationStatus, d.VaccinationStatus)
	d.Avatar = applyText(in.Avatar, d.Avatar)
	d.Notes = applyText(in.Notes, d.Notes)
	if in.Gender.Set {
		d.Gender = ""
		if in.Gender.Value != nil {
			d.Gender = *in.Gender.Value
		}
	}
	d.Birthday = in.Birthday.Apply(d.Birthday)
	d.Sterilized = in.Sterilized.Apply(d.Sterilized)
	d.WeightKg = in.WeightKg.Apply(d.WeightKg)

	if err := s.validate(ctx, d); err != nil {
		return Dog{}, err
	}

	d.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, d); err != nil {
		return Dog{}, err
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, ownerUserID, id string) error {
	d, err := s.Get(ctx, ownerUserID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, d.ID)
}

// HasDogWithAvatar indica si el usuario tiene al menos un perro con avatar.
func (s *Service) HasDogWithAvatar(ctx context.Context, ownerUserID string) (bool, error) {
	items, err := s.repo.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return false, err
	}
	_, ok := Primary(items)
	return ok, nil
}

// SummariesFor devuelve perro principal y cantidad por owner.
func (s *Service) SummariesFor(ctx context.Context, ownerUserIDs []string) (map[string]OwnerDogs, error) {
	if len(ownerUserIDs) == 0 {
		return map[string]OwnerDogs{}, nil
	}
	items, err := s.repo.ListByOwners(ctx, ownerUserIDs)
	if err != nil {
		return nil, err
	}
	return GroupByOwner(ownerUserIDs, items), nil
}

func (s *Service) validate(ctx context.Context, d Dog) error {
	if d.Name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(d.Name) > maxNameRunes {
		return ErrNameTooLong
	}
	if !d.Gender.Valid() {
		return ErrInvalidGender
	}
	if d.WeightKg != nil && (*d.WeightKg < 0 || *d.WeightKg > 200) {
		return ErrInvalidWeight
	}

	for _, text := range []string{d.Name, d.Breed, d.Personality} {
		if text == "" {
			continue
		}
		ok, err := s.moderator.IsAllowed(ctx, text)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBlockedContent
		}
	}
	return nil
}

func applyText(f optional.Field[string], cur string) string {
	if !f.Set {
		return cur
	}
	if f.Value == nil {
		return ""
	}
	return strings.TrimSpace(*f.Value)
}
