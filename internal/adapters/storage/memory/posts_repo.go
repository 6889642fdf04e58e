package memory

import (
	"context"
	"errors"
	"strings"
	"time"

	"pawpals/internal/domain/posts"
)

type postsRepo struct{ s *Store }

func clonePost(p posts.Post) posts.Post {
	if p.Images != nil {
		p.Images = append([]string(nil), p.Images...)
	}
	if p.Meetup != nil {
		m := *p.Meetup
		p.Meetup = &m
	}
	return p
}

func (r postsRepo) Create(ctx context.Context, p posts.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("post id required")
	}
	if _, exists := r.s.posts[p.ID]; exists {
		return errors.New("post already exists")
	}
	r.s.posts[p.ID] = clonePost(p)
	r.s.track(p.ID)
	return nil
}

func (r postsRepo) GetByID(ctx context.Context, id string) (posts.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return posts.Post{}, posts.ErrNotFound
	}
	return clonePost(p), nil
}

// Delete borra el post y los saludos que lo referencian.
func (r postsRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return posts.ErrNotFound
	}
	delete(r.s.posts, id)
	for gid, g := range r.s.greetings {
		if g.OnPost(id) {
			delete(r.s.greetings, gid)
		}
	}
	return nil
}

// sortedLocked devuelve los posts más nuevos primero. Requiere s.mu tomado.
func (r postsRepo) sortedLocked(keep func(p posts.Post) bool) []posts.Post {
	ids := make([]string, 0, len(r.s.posts))
	for id, p := range r.s.posts {
		if keep(p) {
			ids = append(ids, id)
		}
	}
	r.s.newestFirst(ids, func(id string) time.Time { return r.s.posts[id].CreatedAt })

	out := make([]posts.Post, 0, len(ids))
	for _, id := range ids {
		out = append(out, clonePost(r.s.posts[id]))
	}
	return out
}

func (r postsRepo) List(ctx context.Context, f posts.ListFilter) ([]posts.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.sortedLocked(func(p posts.Post) bool {
		return f.AuthorID == "" || p.AuthorID == f.AuthorID
	})
	return page(all, f.Limit, f.Offset), nil
}

func (r postsRepo) RecentLocated(ctx context.Context, limit int, since time.Time) ([]posts.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.sortedLocked(func(p posts.Post) bool {
		return p.HasCoordinates() && (since.IsZero() || p.CreatedAt.After(since))
	})
	return page(all, limit, 0), nil
}

func (r postsRepo) LatestLocatedByAuthor(ctx context.Context, authorID string) (posts.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.sortedLocked(func(p posts.Post) bool {
		return p.AuthorID == authorID && p.HasCoordinates()
	})
	if len(all) == 0 {
		return posts.Post{}, posts.ErrNotFound
	}
	return all[0], nil
}
