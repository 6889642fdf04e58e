package posts

import (
	"context"
	"strings"
	"time"

	"pawpals/internal/domain/geo"
	"pawpals/internal/domain/users"
	"pawpals/internal/platform/apperr"
	"pawpals/internal/ports/moderation"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = apperr.NotFound("post not found")
	ErrForbidden           = apperr.Forbidden("you can only delete your own posts")
	ErrMissingFields       = apperr.Validation("content, location and coordinates are required")
	ErrInvalidCoordinates  = apperr.Validation("latitude/longitude out of range")
	ErrInvalidType         = apperr.Validation("post_type must be one of share, wander, meetup")
	ErrDogProfileRequired  = apperr.Validation("please complete a dog profile with an avatar before posting")
	ErrBlockedContent      = apperr.Validation("content contains blocked words, please edit and retry")
	ErrMeetupTargetMissing = apperr.Validation("target_location is required for meetups")
	ErrMeetupDuration      = apperr.Validation("duration must be one of 30, 60, 90, 120, 240 minutes")
	ErrMeetupStartMissing  = apperr.Validation("start_time is required for meetups")
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// AuthorLookup resuelve autores en lote.
type AuthorLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]users.User, error)
}

// DogProfileChecker evita importar dogs.Service completo.
type DogProfileChecker interface {
	HasDogWithAvatar(ctx context.Context, ownerUserID string) (bool, error)
}

type Service struct {
	repo      Repository
	authors   AuthorLookup
	dogs      DogProfileChecker
	moderator moderation.Moderator
	now       func() time.Time
}

func NewService(repo Repository, authors AuthorLookup, dogs DogProfileChecker, moderator moderation.Moderator) *Service {
	if moderator == nil {
		moderator = moderation.AllowAll{}
	}
	return &Service{
		repo:      repo,
		authors:   authors,
		dogs:      dogs,
		moderator: moderator,
		now:       time.Now,
	}
}

type CreateInput struct {
	Content   string
	Location  string
	Latitude  *float64
	Longitude *float64
	Images    []string
	Type      PostType

	TargetLocation  string
	DurationMinutes int
	StartTime       *time.Time
}

func (s *Service) Create(ctx context.Context, authorID string, in CreateInput) (Post, error) {
	content := strings.TrimSpace(in.Content)
	location := strings.TrimSpace(in.Location)
	if content == "" || location == "" || in.Latitude == nil || in.Longitude == nil {
		return Post{}, ErrMissingFields
	}
	if !geo.ValidCoordinate(*in.Latitude, *in.Longitude) {
		return Post{}, ErrInvalidCoordinates
	}

	typ := in.Type
	if typ == "" {
		typ = TypeShare
	}
	if !typ.Valid() {
		return Post{}, ErrInvalidType
	}

	var meetup *Meetup
	if typ == TypeMeetup {
		m, err := meetupFrom(in)
		if err != nil {
			return Post{}, err
		}
		meetup = &m
	}

	ok, err := s.dogs.HasDogWithAvatar(ctx, authorID)
	if err != nil {
		return Post{}, err
	}
	if !ok {
		return Post{}, ErrDogProfileRequired
	}

	allowed, err := s.moderator.IsAllowed(ctx, content)
	if err != nil {
		return Post{}, err
	}
	if !allowed {
		return Post{}, ErrBlockedContent
	}

	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}

	p := Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Content:   content,
		Location:  location,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Images:    images,
		Type:      typ,
		Meetup:    meetup,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

func meetupFrom(in CreateInput) (Meetup, error) {
	target := strings.TrimSpace(in.TargetLocation)
	if target == "" {
		return Meetup{}, ErrMeetupTargetMissing
	}
	if !ValidDuration(in.DurationMinutes) {
		return Meetup{}, ErrMeetupDuration
	}
	if in.StartTime == nil || in.StartTime.IsZero() {
		return Meetup{}, ErrMeetupStartMissing
	}
	return Meetup{
		TargetLocation:  target,
		DurationMinutes: in.DurationMinutes,
		StartTime:       in.StartTime.UTC(),
		Status:          MeetupOpen,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	if strings.TrimSpace(id) == "" {
		return Post{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

// LatestLocated devuelve el último post con coordenadas del usuario.
func (s *Service) LatestLocated(ctx context.Context, authorID string) (Post, error) {
	return s.repo.LatestLocatedByAuthor(ctx, authorID)
}

// RecentLocated expone el scan acotado usado por nearby.
func (s *Service) RecentLocated(ctx context.Context, limit int, since time.Time) ([]Post, error) {
	return s.repo.RecentLocated(ctx, limit, since)
}

// Delete: inexistente => 404, ajeno => 403.
func (s *Service) Delete(ctx context.Context, requesterID, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.AuthorID != requesterID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, p.ID)
}

type ListInput struct {
	Limit    int
	Skip     int
	AuthorID string
	Lat      *float64
	Lng      *float64
}

// FeedItem es un post con su autor y la distancia al que consulta (si mandó coordenadas).
type FeedItem struct {
	Post           Post
	Author         users.User
	DistanceMeters *float64
}

func (s *Service) List(ctx context.Context, in ListInput) ([]FeedItem, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := in.Skip
	if offset < 0 {
		offset = 0
	}

	items, err := s.repo.List(ctx, ListFilter{
		AuthorID: strings.TrimSpace(in.AuthorID),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []FeedItem{}, nil
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, p := range items {
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		seen[p.AuthorID] = struct{}{}
		ids = append(ids, p.AuthorID)
	}
	authors, err := s.authors.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]FeedItem, 0, len(items))
	for _, p := range items {
		author, ok := authors[p.AuthorID]
		if !ok {
			// autor borrado: el post no se muestra
			continue
		}
		it := FeedItem{Post: p, Author: author}
		if in.Lat != nil && in.Lng != nil && p.HasCoordinates() {
			d := geo.Distance(*in.Lat, *in.Lng, *p.Latitude, *p.Longitude)
			it.DistanceMeters = &d
		}
		out = append(out, it)
	}
	return out, nil
}
