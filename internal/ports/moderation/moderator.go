package moderation

import "context"

// Moderator decide si un texto puede persistirse.
type Moderator interface {
	IsAllowed(ctx context.Context, text string) (bool, error)
}

// AllowAll no filtra nada (modo dev).
type AllowAll struct{}

func (AllowAll) IsAllowed(context.Context, string) (bool, error) { return true, nil }

// All exige que todos los moderadores permitan el texto.
type All []Moderator

func (a All) IsAllowed(ctx context.Context, text string) (bool, error) {
	for _, m := range a {
		ok, err := m.IsAllowed(ctx, text)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
