package memory

import (
	"context"
	"time"

	"pawpals/internal/domain/greetings"
	"pawpals/internal/domain/posts"
)

type greetingsRepo struct{ s *Store }

func (r greetingsRepo) LastSentAt(ctx context.Context, senderID, receiverID string) (time.Time, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	last, ok := r.lastSentLocked(senderID, receiverID)
	return last, ok, nil
}

func (r greetingsRepo) lastSentLocked(senderID, receiverID string) (time.Time, bool) {
	var (
		last  time.Time
		found bool
	)
	for _, g := range r.s.greetings {
		if g.SenderID != senderID || g.ReceiverID != receiverID {
			continue
		}
		if !found || g.CreatedAt.After(last) {
			last, found = g.CreatedAt, true
		}
	}
	return last, found
}

func (r greetingsRepo) HasResponded(ctx context.Context, senderID, postID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.hasRespondedLocked(senderID, postID), nil
}

func (r greetingsRepo) hasRespondedLocked(senderID, postID string) bool {
	for _, g := range r.s.greetings {
		if g.SenderID == senderID && g.Type == greetings.TypeRespond && g.OnPost(postID) {
			return true
		}
	}
	return false
}

// Create revalida cooldown y unicidad del respond bajo el lock del store.
func (r greetingsRepo) Create(ctx context.Context, g greetings.Greeting, notBefore time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if g.Type == greetings.TypeRespond && g.PostID != nil && r.hasRespondedLocked(g.SenderID, *g.PostID) {
		return greetings.ErrAlreadyResponded
	}
	if last, ok := r.lastSentLocked(g.SenderID, g.ReceiverID); ok && last.After(notBefore) {
		return &greetings.CooldownError{LastSentAt: last}
	}
	r.s.greetings[g.ID] = g
	r.s.track(g.ID)
	return nil
}

func (r greetingsRepo) GetByID(ctx context.Context, id string) (greetings.Greeting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.greetings[id]
	if !ok {
		return greetings.Greeting{}, greetings.ErrNotFound
	}
	return g, nil
}

func (r greetingsRepo) newestLocked(keep func(g greetings.Greeting) bool, limit int) []greetings.Greeting {
	ids := make([]string, 0)
	for id, g := range r.s.greetings {
		if keep(g) {
			ids = append(ids, id)
		}
	}
	r.s.newestFirst(ids, func(id string) time.Time { return r.s.greetings[id].CreatedAt })

	out := make([]greetings.Greeting, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.greetings[id])
	}
	return page(out, limit, 0)
}

func (r greetingsRepo) ListResponses(ctx context.Context, postID string) ([]greetings.Greeting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.newestLocked(func(g greetings.Greeting) bool {
		return g.Type == greetings.TypeRespond && g.OnPost(postID)
	}, 0), nil
}

func (r greetingsRepo) ListReceived(ctx context.Context, receiverID string, limit int) ([]greetings.Greeting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.newestLocked(func(g greetings.Greeting) bool {
		return g.ReceiverID == receiverID
	}, limit), nil
}

func (r greetingsRepo) HasSentHi(ctx context.Context, senderID string, receiverIDs []string) (map[string]bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	want := make(map[string]struct{}, len(receiverIDs))
	for _, id := range receiverIDs {
		want[id] = struct{}{}
	}
	out := make(map[string]bool, len(receiverIDs))
	for _, g := range r.s.greetings {
		if g.SenderID != senderID || g.Type != greetings.TypeHi {
			continue
		}
		if _, ok := want[g.ReceiverID]; ok {
			out[g.ReceiverID] = true
		}
	}
	return out, nil
}

// Accept aplica las cuatro escrituras bajo un único lock; si falla una guarda no escribe nada.
func (r greetingsRepo) Accept(ctx context.Context, postID, responseID string, confirm greetings.Greeting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok || !p.IsOpenMeetup() {
		return greetings.ErrPostNotOpen
	}
	resp, ok := r.s.greetings[responseID]
	if !ok || resp.Type != greetings.TypeRespond || !resp.OnPost(postID) || resp.Status != greetings.StatusPending {
		return greetings.ErrResponseNotPending
	}

	p = clonePost(p)
	p.Meetup.Status = posts.MeetupMatched
	r.s.posts[postID] = p

	resp.Status = greetings.StatusAccepted
	r.s.greetings[responseID] = resp

	r.s.greetings[confirm.ID] = confirm
	r.s.track(confirm.ID)

	for id, g := range r.s.greetings {
		if id == responseID || g.Type != greetings.TypeRespond || !g.OnPost(postID) {
			continue
		}
		if g.Status == greetings.StatusPending {
			g.Status = greetings.StatusRejected
			r.s.greetings[id] = g
		}
	}
	return nil
}
