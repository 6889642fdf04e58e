package memory

import (
	"context"
	"time"

	"pawpals/internal/domain/feedback"
	"pawpals/internal/ports/auth"
	"pawpals/internal/ports/blob"
)

type feedbackRepo struct{ s *Store }

func (r feedbackRepo) Create(ctx context.Context, e feedback.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.feedback = append(r.s.feedback, e)
	return nil
}

type blobStore struct{ s *Store }

func (b blobStore) Put(ctx context.Context, obj blob.Object) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	obj.Data = append([]byte(nil), obj.Data...)
	b.s.blobs[obj.Key] = obj
	return nil
}

func (b blobStore) Get(ctx context.Context, key string) (blob.Object, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()

	obj, ok := b.s.blobs[key]
	if !ok {
		return blob.Object{}, blob.ErrNotFound
	}
	return obj, nil
}

func (b blobStore) Ping(ctx context.Context) error { return nil }

type session struct {
	userID    string
	expiresAt time.Time
}

// SessionStore guarda sesiones con expiración; sirve cuando no hay Redis.
type SessionStore struct{ s *Store }

func (ss *SessionStore) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	ss.s.sessions[sessionID] = session{userID: userID, expiresAt: ss.s.nowFor().Add(ttl)}
	return nil
}

func (ss *SessionStore) Lookup(ctx context.Context, sessionID string) (string, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()

	sess, ok := ss.s.sessions[sessionID]
	if !ok || !ss.s.nowFor().Before(sess.expiresAt) {
		return "", auth.ErrSessionNotFound
	}
	return sess.userID, nil
}

func (ss *SessionStore) Delete(ctx context.Context, sessionID string) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	delete(ss.s.sessions, sessionID)
	return nil
}
