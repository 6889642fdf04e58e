// Package nearby encuentra usuarios cercanos a partir de sus posts recientes con ubicación.
package nearby

import (
	"context"
	"sort"
	"strings"
	"time"

	"pawpals/internal/domain/dogs"
	"pawpals/internal/domain/geo"
	"pawpals/internal/domain/posts"
	"pawpals/internal/domain/users"
	"pawpals/internal/platform/apperr"
)

const (
	DefaultLimit     = 20
	MaxLimit         = 50
	DefaultScanLimit = 200
	DefaultWindow    = 30 * time.Minute
)

var ErrInvalidLocation = apperr.Validation("a valid current location (lat, lng) is required")

type PostScanner interface {
	RecentLocated(ctx context.Context, limit int, since time.Time) ([]posts.Post, error)
}

type UserLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]users.User, error)
}

type DogSummaries interface {
	SummariesFor(ctx context.Context, ownerUserIDs []string) (map[string]dogs.OwnerDogs, error)
}

type HiChecker interface {
	HiSentTo(ctx context.Context, senderID string, receiverIDs []string) (map[string]bool, error)
}

type Options struct {
	// ScanLimit acota los posts revisados; Window <= 0 desactiva la ventana temporal.
	ScanLimit int
	Window    time.Duration
}

type Finder struct {
	posts PostScanner
	users UserLookup
	dogs  DogSummaries
	hi    HiChecker
	opts  Options
	now   func() time.Time
}

func NewFinder(p PostScanner, u UserLookup, d DogSummaries, hi HiChecker, opts Options) *Finder {
	if opts.ScanLimit <= 0 {
		opts.ScanLimit = DefaultScanLimit
	}
	return &Finder{
		posts: p,
		users: u,
		dogs:  d,
		hi:    hi,
		opts:  opts,
		now:   time.Now,
	}
}

type Query struct {
	Lat         float64
	Lng         float64
	Radius      *float64 // metros; nil => sin radio
	Limit       int
	RequesterID string // opcional
}

// Friend es un usuario cercano, ubicado por su post más reciente.
type Friend struct {
	User           users.User
	Latitude       float64
	Longitude      float64
	DistanceMeters float64
	LatestLocation string
	Dog            *dogs.Summary
	DogCount       int
	HiSent         bool
}

// ClampLimit lleva limit a [1, MaxLimit]; 0 o negativo => DefaultLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (f *Finder) Find(ctx context.Context, q Query) ([]Friend, error) {
	if !geo.ValidCoordinate(q.Lat, q.Lng) {
		return nil, ErrInvalidLocation
	}
	limit := ClampLimit(q.Limit)

	var since time.Time
	if f.opts.Window > 0 {
		since = f.now().Add(-f.opts.Window)
	}
	recent, err := f.posts.RecentLocated(ctx, f.opts.ScanLimit, since)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return []Friend{}, nil
	}

	authors, err := f.users.GetMany(ctx, distinctAuthors(recent))
	if err != nil {
		return nil, err
	}

	// Orden de inserción = recencia: el primer post visto de cada autor gana.
	seen := make(map[string]struct{}, limit)
	order := make([]string, 0, limit)
	found := make([]Friend, 0, limit)
	for _, p := range recent {
		if len(found) >= limit {
			break
		}
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		if q.RequesterID != "" && p.AuthorID == q.RequesterID {
			continue
		}
		u, ok := authors[p.AuthorID]
		if !ok || !u.Active {
			continue
		}
		if !p.HasCoordinates() {
			continue
		}
		d := geo.Distance(q.Lat, q.Lng, *p.Latitude, *p.Longitude)
		if q.Radius != nil && d > *q.Radius {
			continue
		}

		seen[p.AuthorID] = struct{}{}
		order = append(order, p.AuthorID)
		found = append(found, Friend{
			User:           u,
			Latitude:       *p.Latitude,
			Longitude:      *p.Longitude,
			DistanceMeters: d,
			LatestLocation: p.Location,
		})
	}
	if len(found) == 0 {
		return found, nil
	}

	summaries, err := f.dogs.SummariesFor(ctx, order)
	if err != nil {
		return nil, err
	}
	var sent map[string]bool
	if strings.TrimSpace(q.RequesterID) != "" {
		if sent, err = f.hi.HiSentTo(ctx, q.RequesterID, order); err != nil {
			return nil, err
		}
	}

	for i := range found {
		id := found[i].User.ID
		od := summaries[id]
		found[i].Dog = od.Primary
		found[i].DogCount = od.Count
		found[i].HiSent = sent[id]
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].DistanceMeters < found[j].DistanceMeters
	})
	return found, nil
}

func distinctAuthors(items []posts.Post) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, p := range items {
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		seen[p.AuthorID] = struct{}{}
		out = append(out, p.AuthorID)
	}
	return out
}
