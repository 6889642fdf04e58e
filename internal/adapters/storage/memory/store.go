// Package memory implementa todos los repositorios sobre mapas en memoria.
// Un único mutex cubre todas las tablas: las operaciones multi-tabla (accept,
// borrado en cascada) son atómicas igual que en una transacción.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pawpals/internal/domain/dogs"
	"pawpals/internal/domain/feedback"
	"pawpals/internal/domain/greetings"
	"pawpals/internal/domain/posts"
	"pawpals/internal/domain/reminders"
	"pawpals/internal/domain/users"
	"pawpals/internal/ports/blob"
)

type Store struct {
	mu sync.RWMutex

	users     map[string]users.User
	dogs      map[string]dogs.Dog
	reminders map[string]reminders.Reminder
	posts     map[string]posts.Post
	greetings map[string]greetings.Greeting
	feedback  []feedback.Entry
	blobs     map[string]blob.Object
	sessions  map[string]session

	// orden de inserción, para desempatar created_at iguales
	seq    uint64
	seqOf  map[string]uint64
	nowFor func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]users.User),
		dogs:      make(map[string]dogs.Dog),
		reminders: make(map[string]reminders.Reminder),
		posts:     make(map[string]posts.Post),
		greetings: make(map[string]greetings.Greeting),
		blobs:     make(map[string]blob.Object),
		sessions:  make(map[string]session),
		seqOf:     make(map[string]uint64),
		nowFor:    time.Now,
	}
}

func (s *Store) Users() users.Repository         { return usersRepo{s} }
func (s *Store) Dogs() dogs.Repository           { return dogsRepo{s} }
func (s *Store) Reminders() reminders.Repository { return remindersRepo{s} }
func (s *Store) Posts() posts.Repository         { return postsRepo{s} }
func (s *Store) Greetings() greetings.Repository { return greetingsRepo{s} }
func (s *Store) Feedback() feedback.Repository   { return feedbackRepo{s} }
func (s *Store) Blobs() blob.Store               { return blobStore{s} }
func (s *Store) Sessions() *SessionStore         { return &SessionStore{s} }

// Ping siempre responde; existe para el health check.
func (s *Store) Ping(context.Context) error { return nil }

// track registra el orden de inserción de id. Requiere s.mu tomado.
func (s *Store) track(id string) {
	s.seq++
	s.seqOf[id] = s.seq
}

// newestFirst ordena por created_at desc y, a igual fecha, último insertado primero.
func (s *Store) newestFirst(ids []string, createdAt func(id string) time.Time) {
	sort.SliceStable(ids, func(i, j int) bool {
		ti, tj := createdAt(ids[i]), createdAt(ids[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return s.seqOf[ids[i]] > s.seqOf[ids[j]]
	})
}
