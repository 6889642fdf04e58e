package greetings

import (
	"context"
	"errors"
	"strings"
	"time"

	"pawpals/internal/domain/dogs"
	"pawpals/internal/domain/posts"
	"pawpals/internal/domain/users"
	"pawpals/internal/platform/apperr"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = apperr.NotFound("greeting not found")
	ErrSelfGreeting       = apperr.Validation("you cannot greet yourself")
	ErrTargetNotFound     = apperr.NotFound("user not found or inactive")
	ErrNotMeetup          = apperr.Validation("only meetup posts accept responses")
	ErrMeetupClosed       = apperr.Validation("this meetup is closed or already matched")
	ErrSelfResponse       = apperr.Validation("you cannot respond to your own meetup")
	ErrAlreadyResponded   = apperr.Conflict("you have already responded to this meetup")
	ErrNotPostAuthor      = apperr.Forbidden("only the post author can manage its responses")
	ErrResponseIDRequired = apperr.Validation("response_id is required")
	ErrPostNotOpen        = apperr.Conflict("this meetup is no longer open")
	ErrResponseNotFound   = apperr.NotFound("response not found")
	ErrResponseNotPending = apperr.Conflict("this response has already been handled")
)

const inboxLimit = 50

type UserLookup interface {
	GetByID(ctx context.Context, id string) (users.User, error)
	GetMany(ctx context.Context, ids []string) (map[string]users.User, error)
}

type PostLookup interface {
	Get(ctx context.Context, id string) (posts.Post, error)
	LatestLocated(ctx context.Context, authorID string) (posts.Post, error)
}

type DogSummaries interface {
	SummariesFor(ctx context.Context, ownerUserIDs []string) (map[string]dogs.OwnerDogs, error)
}

type Service struct {
	repo    Repository
	limiter *Limiter
	users   UserLookup
	posts   PostLookup
	dogs    DogSummaries
	now     func() time.Time
}

func NewService(repo Repository, usersLookup UserLookup, postsLookup PostLookup, dogSummaries DogSummaries, cooldown time.Duration) *Service {
	return &Service{
		repo:    repo,
		limiter: NewLimiter(repo, cooldown),
		users:   usersLookup,
		posts:   postsLookup,
		dogs:    dogSummaries,
		now:     time.Now,
	}
}

// SendHi crea un saludo "hi" pendiente hacia targetUserID.
func (s *Service) SendHi(ctx context.Context, senderID, targetUserID, message string) (Greeting, error) {
	targetUserID = strings.TrimSpace(targetUserID)
	if targetUserID == "" {
		return Greeting{}, ErrTargetNotFound
	}
	if targetUserID == senderID {
		return Greeting{}, ErrSelfGreeting
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if errors.Is(err, users.ErrNotFound) {
		return Greeting{}, ErrTargetNotFound
	}
	if err != nil {
		return Greeting{}, err
	}
	if !target.Active {
		return Greeting{}, ErrTargetNotFound
	}

	g := Greeting{
		SenderID:   senderID,
		ReceiverID: targetUserID,
		Message:    messageOr(message, DefaultHiMessage),
		Type:       TypeHi,
		Status:     StatusPending,
	}
	return s.create(ctx, g)
}

// Respond aplica al meetup postID. La unicidad y el cooldown se revalidan al escribir.
func (s *Service) Respond(ctx context.Context, senderID, postID, message string) (Greeting, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return Greeting{}, err
	}
	if !p.IsMeetup() {
		return Greeting{}, ErrNotMeetup
	}
	if !p.IsOpenMeetup() {
		return Greeting{}, ErrMeetupClosed
	}
	if p.AuthorID == senderID {
		return Greeting{}, ErrSelfResponse
	}

	done, err := s.repo.HasResponded(ctx, senderID, p.ID)
	if err != nil {
		return Greeting{}, err
	}
	if done {
		return Greeting{}, ErrAlreadyResponded
	}

	pid := p.ID
	g := Greeting{
		SenderID:   senderID,
		ReceiverID: p.AuthorID,
		Message:    messageOr(message, DefaultRespondMessage),
		Type:       TypeRespond,
		PostID:     &pid,
		Status:     StatusPending,
	}
	return s.create(ctx, g)
}

// create chequea cooldown y luego inserta con la misma ventana como guarda.
func (s *Service) create(ctx context.Context, g Greeting) (Greeting, error) {
	now := s.now().UTC()

	d, err := s.limiter.CanGreet(ctx, g.SenderID, g.ReceiverID, now)
	if err != nil {
		return Greeting{}, err
	}
	if !d.Allowed {
		return Greeting{}, apperr.RateLimited(d.RetryAfterSeconds)
	}

	g.ID = uuid.NewString()
	g.CreatedAt = now
	if err := s.repo.Create(ctx, g, now.Add(-s.limiter.Window())); err != nil {
		var ce *CooldownError
		if errors.As(err, &ce) {
			return Greeting{}, apperr.RateLimited(Evaluate(ce.LastSentAt, now, s.limiter.Window()).RetryAfterSeconds)
		}
		return Greeting{}, err
	}
	return g, nil
}

// ResponseView es una respuesta con el perfil del sender y su perro principal.
type ResponseView struct {
	Greeting Greeting
	Sender   users.User
	Dog      *dogs.Summary
}

func (s *Service) ListResponses(ctx context.Context, requesterID, postID string) ([]ResponseView, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != requesterID {
		return nil, ErrNotPostAuthor
	}

	items, err := s.repo.ListResponses(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	senders, summaries, err := s.enrich(ctx, items)
	if err != nil {
		return nil, err
	}

	out := make([]ResponseView, 0, len(items))
	for _, g := range items {
		out = append(out, ResponseView{
			Greeting: g,
			Sender:   senderOrStub(senders, g.SenderID),
			Dog:      summaries[g.SenderID].Primary,
		})
	}
	return out, nil
}

// AcceptResult lleva al responder y su última ubicación conocida para navegar.
type AcceptResult struct {
	Responder     users.User
	ResponderPost *posts.Post // último post con coordenadas; nil si no hay
	MeetupLat     *float64
	MeetupLng     *float64
}

func (s *Service) AcceptResponse(ctx context.Context, authorID, postID, responseID string) (AcceptResult, error) {
	responseID = strings.TrimSpace(responseID)
	if responseID == "" {
		return AcceptResult{}, ErrResponseIDRequired
	}

	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return AcceptResult{}, err
	}
	if p.AuthorID != authorID {
		return AcceptResult{}, ErrNotPostAuthor
	}
	if !p.IsMeetup() {
		return AcceptResult{}, ErrNotMeetup
	}
	if !p.IsOpenMeetup() {
		return AcceptResult{}, ErrPostNotOpen
	}

	resp, err := s.repo.GetByID(ctx, responseID)
	if errors.Is(err, ErrNotFound) {
		return AcceptResult{}, ErrResponseNotFound
	}
	if err != nil {
		return AcceptResult{}, err
	}
	if resp.Type != TypeRespond || !resp.OnPost(p.ID) {
		return AcceptResult{}, ErrResponseNotFound
	}
	if resp.Status != StatusPending {
		return AcceptResult{}, ErrResponseNotPending
	}

	pid := p.ID
	confirm := Greeting{
		ID:         uuid.NewString(),
		SenderID:   authorID,
		ReceiverID: resp.SenderID,
		Message:    AcceptMessage,
		Type:       TypeAccept,
		PostID:     &pid,
		Status:     StatusAccepted,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Accept(ctx, p.ID, resp.ID, confirm); err != nil {
		return AcceptResult{}, err
	}

	res := AcceptResult{
		Responder: users.User{ID: resp.SenderID},
		MeetupLat: p.Latitude,
		MeetupLng: p.Longitude,
	}
	// El match ya está confirmado; lo que sigue solo enriquece la respuesta.
	if u, err := s.users.GetByID(ctx, resp.SenderID); err == nil {
		res.Responder = u
	} else if !errors.Is(err, users.ErrNotFound) {
		return AcceptResult{}, err
	}
	if lp, err := s.posts.LatestLocated(ctx, resp.SenderID); err == nil {
		res.ResponderPost = &lp
	} else if !errors.Is(err, posts.ErrNotFound) {
		return AcceptResult{}, err
	}
	return res, nil
}

// InboxItem es un saludo recibido con sender y perro principal.
type InboxItem struct {
	Greeting Greeting
	Sender   users.User
	Dog      *dogs.Summary
}

// Inbox devuelve los últimos saludos recibidos.
func (s *Service) Inbox(ctx context.Context, receiverID string) ([]InboxItem, error) {
	items, err := s.repo.ListReceived(ctx, receiverID, inboxLimit)
	if err != nil {
		return nil, err
	}

	senders, summaries, err := s.enrich(ctx, items)
	if err != nil {
		return nil, err
	}

	out := make([]InboxItem, 0, len(items))
	for _, g := range items {
		out = append(out, InboxItem{
			Greeting: g,
			Sender:   senderOrStub(senders, g.SenderID),
			Dog:      summaries[g.SenderID].Primary,
		})
	}
	return out, nil
}

// HiSentTo marca a qué receivers senderID ya les mandó un "hi" alguna vez.
func (s *Service) HiSentTo(ctx context.Context, senderID string, receiverIDs []string) (map[string]bool, error) {
	if strings.TrimSpace(senderID) == "" || len(receiverIDs) == 0 {
		return map[string]bool{}, nil
	}
	return s.repo.HasSentHi(ctx, senderID, receiverIDs)
}

func (s *Service) enrich(ctx context.Context, items []Greeting) (map[string]users.User, map[string]dogs.OwnerDogs, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, g := range items {
		if _, ok := seen[g.SenderID]; ok {
			continue
		}
		seen[g.SenderID] = struct{}{}
		ids = append(ids, g.SenderID)
	}
	if len(ids) == 0 {
		return map[string]users.User{}, map[string]dogs.OwnerDogs{}, nil
	}

	senders, err := s.users.GetMany(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	summaries, err := s.dogs.SummariesFor(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return senders, summaries, nil
}

func senderOrStub(m map[string]users.User, id string) users.User {
	if u, ok := m[id]; ok {
		return u
	}
	return users.User{ID: id}
}

func messageOr(msg, fallback string) string {
	if m := strings.TrimSpace(msg); m != "" {
		return m
	}
	return fallback
}
