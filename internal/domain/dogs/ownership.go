package dogs

import "context"

// OwnerOf expone el ownerUserID de un perro.
// Se usa para evitar ciclos de imports entre módulos (dogs <-> reminders).
func (s *Service) OwnerOf(ctx context.Context, dogID string) (string, error) {
	d, err := s.repo.GetByID(ctx, dogID)
	if err != nil {
		return "", err
	}
	return d.OwnerUserID, nil
}
