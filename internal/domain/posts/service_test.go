package posts

import (
	"context"
	"sort"
	"testing"
	"time"

	"pawpals/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	byID map[string]Post
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]Post{}} }

func (r *testRepo) Create(_ context.Context, p Post) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Post, error) {
	p, ok := r.byID[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *testRepo) sorted() []Post {
	out := make([]Post, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *testRepo) List(_ context.Context, f ListFilter) ([]Post, error) {
	out := make([]Post, 0)
	for _, p := range r.sorted() {
		if f.AuthorID != "" && p.AuthorID != f.AuthorID {
			continue
		}
		out = append(out, p)
	}
	if f.Offset >= len(out) {
		return []Post{}, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *testRepo) RecentLocated(_ context.Context, limit int, since time.Time) ([]Post, error) {
	out := make([]Post, 0)
	for _, p := range r.sorted() {
		if p.HasCoordinates() && (since.IsZero() || p.CreatedAt.After(since)) && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) LatestLocatedByAuthor(_ context.Context, authorID string) (Post, error) {
	for _, p := range r.sorted() {
		if p.AuthorID == authorID && p.HasCoordinates() {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

type staticAuthors map[string]users.User

func (s staticAuthors) GetMany(_ context.Context, ids []string) (map[string]users.User, error) {
	out := map[string]users.User{}
	for _, id := range ids {
		if u, ok := s[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type dogChecker map[string]bool

func (d dogChecker) HasDogWithAvatar(_ context.Context, owner string) (bool, error) {
	return d[owner], nil
}

type denyWord string

func (w denyWord) IsAllowed(_ context.Context, text string) (bool, error) {
	return text != string(w), nil
}

func ptr[T any](v T) *T { return &v }

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	authors := staticAuthors{
		"u1": {ID: "u1", Nickname: "Ana", Active: true},
		"u2": {ID: "u2", Nickname: "Beto", Active: true},
	}
	svc := NewService(repo, authors, dogChecker{"u1": true, "u2": true}, denyWord("spam"))
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	n := 0
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return svc, repo
}

func validInput() CreateInput {
	return CreateInput{
		Content:   "walking at the park",
		Location:  "Central Park",
		Latitude:  ptr(40.78),
		Longitude: ptr(-73.96),
	}
}

func TestCreate_DefaultsToShare(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.Create(context.Background(), "u1", validInput())
	require.NoError(t, err)
	assert.Equal(t, TypeShare, p.Type)
	assert.Nil(t, p.Meetup)
	assert.NotEmpty(t, p.ID)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := validInput()
	in.Latitude = nil
	_, err := svc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, ErrMissingFields)

	in = validInput()
	in.Latitude = ptr(123.0)
	_, err = svc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	in = validInput()
	in.Type = "party"
	_, err = svc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.Create(ctx, "nodog", validInput())
	assert.ErrorIs(t, err, ErrDogProfileRequired)

	in = validInput()
	in.Content = "spam"
	_, err = svc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, ErrBlockedContent)
}

func TestCreate_Meetup(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := validInput()
	in.Type = TypeMeetup
	_, err := svc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, ErrMeetupTargetMissing)

	in.TargetLocation = "dog run"
	in.DurationMinutes = 45
	_, err = svc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, ErrMeetupDuration)

	in.DurationMinutes = 60
	_, err = svc.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, ErrMeetupStartMissing)

	in.StartTime = ptr(time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC))
	p, err := svc.Create(ctx, "u1", in)
	require.NoError(t, err)
	require.NotNil(t, p.Meetup)
	assert.Equal(t, MeetupOpen, p.Meetup.Status)
	assert.True(t, p.IsOpenMeetup())
}

func TestDelete_OwnerOnly(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "u1", validInput())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "u2", p.ID), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, "u1", "missing"), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, "u1", p.ID))
	assert.Empty(t, repo.byID)
}

func TestList_DistanceAndFilter(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", validInput())
	require.NoError(t, err)
	in := validInput()
	in.Latitude = ptr(40.79)
	_, err = svc.Create(ctx, "u2", in)
	require.NoError(t, err)

	items, err := svc.List(ctx, ListInput{Lat: ptr(40.78), Lng: ptr(-73.96)})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "u2", items[0].Post.AuthorID, "newest first")
	assert.Equal(t, "Beto", items[0].Author.Nickname)
	require.NotNil(t, items[1].DistanceMeters)
	assert.InDelta(t, 0, *items[1].DistanceMeters, 0.001)

	items, err = svc.List(ctx, ListInput{AuthorID: "u1", Limit: 500})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].DistanceMeters)
}
