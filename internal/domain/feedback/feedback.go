// Package feedback recibe comentarios de usuarios, logueados o anónimos.
package feedback

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"pawpals/internal/platform/apperr"
	"pawpals/internal/ports/moderation"

	"github.com/google/uuid"
)

var (
	ErrContentRequired = apperr.Validation("content is required")
	ErrContentShort    = apperr.Validation("content must be at least 5 characters")
	ErrContentLong     = apperr.Validation("content must be at most 1000 characters")
	ErrBlockedContent  = apperr.Validation("content contains blocked words, please edit and retry")
)

const (
	minContentRunes = 5
	maxContentRunes = 1000
)

type Entry struct {
	ID        string
	UserID    *string // nil => anónimo
	Content   string
	Contact   string
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, e Entry) error
}

type Service struct {
	repo      Repository
	moderator moderation.Moderator
	now       func() time.Time
}

func NewService(repo Repository, moderator moderation.Moderator) *Service {
	if moderator == nil {
		moderator = moderation.AllowAll{}
	}
	return &Service{repo: repo, moderator: moderator, now: time.Now}
}

// Submit valida largo en caracteres (no bytes) y modera el contenido.
func (s *Service) Submit(ctx context.Context, userID, content, contact string) (Entry, error) {
	content = strings.TrimSpace(content)
	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		return Entry{}, ErrContentRequired
	case n < minContentRunes:
		return Entry{}, ErrContentShort
	case n > maxContentRunes:
		return Entry{}, ErrContentLong
	}

	ok, err := s.moderator.IsAllowed(ctx, content)
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		return Entry{}, ErrBlockedContent
	}

	e := Entry{
		ID:        uuid.NewString(),
		Content:   content,
		Contact:   strings.TrimSpace(contact),
		CreatedAt: s.now().UTC(),
	}
	if uid := strings.TrimSpace(userID); uid != "" {
		e.UserID = &uid
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
