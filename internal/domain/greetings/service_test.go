package greetings

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"pawpals/internal/domain/dogs"
	"pawpals/internal/domain/posts"
	"pawpals/internal/domain/users"
	"pawpals/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// world hace de repo de greetings y de lookups de users/posts/dogs sobre un mismo estado.
type world struct {
	mu        sync.Mutex
	users     map[string]users.User
	posts     map[string]posts.Post
	greetings map[string]Greeting
	dogs      map[string]dogs.OwnerDogs
}

func newWorld() *world {
	return &world{
		users: map[string]users.User{
			"author": {ID: "author", Nickname: "Ana", Active: true},
			"bob":    {ID: "bob", Nickname: "Bob", Active: true},
			"carl":   {ID: "carl", Nickname: "Carl", Active: true},
			"ghost":  {ID: "ghost", Nickname: "Ghost", Active: false},
		},
		posts:     map[string]posts.Post{},
		greetings: map[string]Greeting{},
		dogs: map[string]dogs.OwnerDogs{
			"bob": {Primary: &dogs.Summary{ID: "d1", Name: "Rex", Breed: "Beagle"}, Count: 2},
		},
	}
}

func (w *world) addMeetup(id, author string, status posts.MeetupStatus) {
	lat, lng := 10.0, 20.0
	w.posts[id] = posts.Post{
		ID: id, AuthorID: author, Type: posts.TypeMeetup,
		Latitude: &lat, Longitude: &lng, Location: "park",
		Meetup:    &posts.Meetup{TargetLocation: "park", DurationMinutes: 60, Status: status},
		CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// --- UserLookup / PostLookup / DogSummaries

func (w *world) GetByID(_ context.Context, id string) (users.User, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	u, ok := w.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (w *world) GetMany(_ context.Context, ids []string) (map[string]users.User, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := map[string]users.User{}
	for _, id := range ids {
		if u, ok := w.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type postLookup struct{ *world }

func (p postLookup) Get(_ context.Context, id string) (posts.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	post, ok := p.posts[id]
	if !ok {
		return posts.Post{}, posts.ErrNotFound
	}
	return post, nil
}

func (p postLookup) LatestLocated(_ context.Context, authorID string) (posts.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var (
		best  posts.Post
		found bool
	)
	for _, post := range p.posts {
		if post.AuthorID == authorID && post.HasCoordinates() && (!found || post.CreatedAt.After(best.CreatedAt)) {
			best, found = post, true
		}
	}
	if !found {
		return posts.Post{}, posts.ErrNotFound
	}
	return best, nil
}

func (w *world) SummariesFor(_ context.Context, ids []string) (map[string]dogs.OwnerDogs, error) {
	out := map[string]dogs.OwnerDogs{}
	for _, id := range ids {
		out[id] = w.dogs[id]
	}
	return out, nil
}

// --- Repository

type greetRepo struct{ *world }

func (r greetRepo) LastSentAt(_ context.Context, sender, receiver string) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSentLocked(sender, receiver)
}

func (r greetRepo) lastSentLocked(sender, receiver string) (time.Time, bool, error) {
	var (
		last time.Time
		ok   bool
	)
	for _, g := range r.greetings {
		if g.SenderID == sender && g.ReceiverID == receiver && (!ok || g.CreatedAt.After(last)) {
			last, ok = g.CreatedAt, true
		}
	}
	return last, ok, nil
}

func (r greetRepo) HasResponded(_ context.Context, sender, postID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.greetings {
		if g.SenderID == sender && g.Type == TypeRespond && g.OnPost(postID) {
			return true, nil
		}
	}
	return false, nil
}

func (r greetRepo) Create(_ context.Context, g Greeting, notBefore time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if last, ok, _ := r.lastSentLocked(g.SenderID, g.ReceiverID); ok && last.After(notBefore) {
		return &CooldownError{LastSentAt: last}
	}
	r.greetings[g.ID] = g
	return nil
}

func (r greetRepo) GetByID(_ context.Context, id string) (Greeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.greetings[id]
	if !ok {
		return Greeting{}, ErrNotFound
	}
	return g, nil
}

func (r greetRepo) ListResponses(_ context.Context, postID string) ([]Greeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Greeting{}
	for _, g := range r.greetings {
		if g.Type == TypeRespond && g.OnPost(postID) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r greetRepo) ListReceived(_ context.Context, receiver string, limit int) ([]Greeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Greeting{}
	for _, g := range r.greetings {
		if g.ReceiverID == receiver {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r greetRepo) HasSentHi(_ context.Context, sender string, receivers []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for _, id := range receivers {
		for _, g := range r.greetings {
			if g.SenderID == sender && g.ReceiverID == id && g.Type == TypeHi {
				out[id] = true
			}
		}
	}
	return out, nil
}

func (r greetRepo) Accept(_ context.Context, postID, responseID string, confirm Greeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.posts[postID]
	if !p.IsOpenMeetup() {
		return ErrPostNotOpen
	}
	resp, ok := r.greetings[responseID]
	if !ok || resp.Status != StatusPending {
		return ErrResponseNotPending
	}

	m := *p.Meetup
	m.Status = posts.MeetupMatched
	p.Meetup = &m
	r.posts[postID] = p

	resp.Status = StatusAccepted
	r.greetings[responseID] = resp
	r.greetings[confirm.ID] = confirm
	for id, g := range r.greetings {
		if id != responseID && g.Type == TypeRespond && g.OnPost(postID) && g.Status == StatusPending {
			g.Status = StatusRejected
			r.greetings[id] = g
		}
	}
	return nil
}

// --- helpers

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestService() (*Service, *world, *clock) {
	w := newWorld()
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(greetRepo{w}, w, postLookup{w}, w, 3*time.Minute)
	svc.now = c.now
	return svc, w, c
}

func kind(err error) apperr.Kind { return apperr.KindOf(err) }

// -------------------------
// SendHi
// -------------------------

func TestSendHi(t *testing.T) {
	svc, _, c := newTestService()
	ctx := context.Background()

	_, err := svc.SendHi(ctx, "bob", "bob", "")
	assert.ErrorIs(t, err, ErrSelfGreeting)

	_, err = svc.SendHi(ctx, "bob", "nobody", "")
	assert.ErrorIs(t, err, ErrTargetNotFound)

	_, err = svc.SendHi(ctx, "bob", "ghost", "")
	assert.ErrorIs(t, err, ErrTargetNotFound)

	g, err := svc.SendHi(ctx, "bob", "author", "   ")
	require.NoError(t, err)
	assert.Equal(t, DefaultHiMessage, g.Message)
	assert.Equal(t, TypeHi, g.Type)
	assert.Equal(t, StatusPending, g.Status)

	c.advance(90 * time.Second)
	_, err = svc.SendHi(ctx, "bob", "author", "again")
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, e.Kind)
	assert.Equal(t, 90, e.RetryAfter)

	// el cooldown es por par: otro receiver no está limitado
	_, err = svc.SendHi(ctx, "bob", "carl", "")
	require.NoError(t, err)

	c.advance(91 * time.Second)
	_, err = svc.SendHi(ctx, "bob", "author", "again")
	require.NoError(t, err)
}

// -------------------------
// Respond
// -------------------------

func TestRespond(t *testing.T) {
	svc, w, c := newTestService()
	ctx := context.Background()
	w.addMeetup("m1", "author", posts.MeetupOpen)
	w.addMeetup("closed", "author", posts.MeetupMatched)
	w.posts["share"] = posts.Post{ID: "share", AuthorID: "author", Type: posts.TypeShare}

	_, err := svc.Respond(ctx, "bob", "missing", "")
	assert.Equal(t, apperr.KindNotFound, kind(err))

	_, err = svc.Respond(ctx, "bob", "share", "")
	assert.ErrorIs(t, err, ErrNotMeetup)

	_, err = svc.Respond(ctx, "bob", "closed", "")
	assert.ErrorIs(t, err, ErrMeetupClosed)

	_, err = svc.Respond(ctx, "author", "m1", "")
	assert.ErrorIs(t, err, ErrSelfResponse)

	g, err := svc.Respond(ctx, "bob", "m1", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultRespondMessage, g.Message)
	assert.Equal(t, "author", g.ReceiverID)
	assert.True(t, g.OnPost("m1"))

	c.advance(10 * time.Minute)
	_, err = svc.Respond(ctx, "bob", "m1", "")
	assert.ErrorIs(t, err, ErrAlreadyResponded)
	assert.Equal(t, apperr.KindConflict, kind(err))
}

func TestRespond_RateLimitedTowardAuthor(t *testing.T) {
	svc, w, c := newTestService()
	ctx := context.Background()
	w.addMeetup("m1", "author", posts.MeetupOpen)

	_, err := svc.SendHi(ctx, "bob", "author", "")
	require.NoError(t, err)

	c.advance(30 * time.Second)
	_, err = svc.Respond(ctx, "bob", "m1", "")
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, 150, e.RetryAfter)
}

// -------------------------
// ListResponses / Accept
// -------------------------

func respondAll(t *testing.T, svc *Service, c *clock, postID string, senders ...string) []Greeting {
	t.Helper()
	out := make([]Greeting, 0, len(senders))
	for _, s := range senders {
		g, err := svc.Respond(context.Background(), s, postID, "")
		require.NoError(t, err)
		out = append(out, g)
		c.advance(time.Second)
	}
	return out
}

func TestListResponses(t *testing.T) {
	svc, w, c := newTestService()
	ctx := context.Background()
	w.addMeetup("m1", "author", posts.MeetupOpen)
	respondAll(t, svc, c, "m1", "bob", "carl")

	_, err := svc.ListResponses(ctx, "bob", "m1")
	assert.ErrorIs(t, err, ErrNotPostAuthor)

	items, err := svc.ListResponses(ctx, "author", "m1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "carl", items[0].Greeting.SenderID, "newest first")
	assert.Nil(t, items[0].Dog)
	require.NotNil(t, items[1].Dog)
	assert.Equal(t, "Rex", items[1].Dog.Name)
	assert.Equal(t, "Bob", items[1].Sender.Nickname)
}

func TestAcceptResponse_RejectsSiblings(t *testing.T) {
	svc, w, c := newTestService()
	ctx := context.Background()
	w.addMeetup("m1", "author", posts.MeetupOpen)
	w.addMeetup("m2", "author", posts.MeetupOpen)
	rs := respondAll(t, svc, c, "m1", "bob", "carl")
	c.advance(5 * time.Minute)
	other := respondAll(t, svc, c, "m2", "carl")[0]

	res, err := svc.AcceptResponse(ctx, "author", "m1", rs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", res.Responder.Nickname)
	assert.Nil(t, res.ResponderPost)
	require.NotNil(t, res.MeetupLat)
	assert.Equal(t, 10.0, *res.MeetupLat)

	assert.Equal(t, posts.MeetupMatched, w.posts["m1"].Meetup.Status)
	assert.Equal(t, StatusAccepted, w.greetings[rs[0].ID].Status)
	assert.Equal(t, StatusRejected, w.greetings[rs[1].ID].Status)
	assert.Equal(t, StatusPending, w.greetings[other.ID].Status, "unrelated post untouched")
	assert.Equal(t, posts.MeetupOpen, w.posts["m2"].Meetup.Status)

	var confirms int
	for _, g := range w.greetings {
		if g.Type == TypeAccept {
			confirms++
			assert.Equal(t, "bob", g.ReceiverID)
			assert.Equal(t, StatusAccepted, g.Status)
			assert.Equal(t, AcceptMessage, g.Message)
		}
	}
	assert.Equal(t, 1, confirms)

	_, err = svc.AcceptResponse(ctx, "author", "m1", rs[1].ID)
	assert.ErrorIs(t, err, ErrPostNotOpen)
}

func TestAcceptResponse_Preconditions(t *testing.T) {
	svc, w, c := newTestService()
	ctx := context.Background()
	w.addMeetup("m1", "author", posts.MeetupOpen)
	w.addMeetup("m2", "author", posts.MeetupOpen)
	w.posts["share"] = posts.Post{ID: "share", AuthorID: "author", Type: posts.TypeShare}
	rs := respondAll(t, svc, c, "m1", "bob")
	hi, err := svc.SendHi(ctx, "carl", "author", "")
	require.NoError(t, err)

	_, err = svc.AcceptResponse(ctx, "author", "m1", "")
	assert.ErrorIs(t, err, ErrResponseIDRequired)

	_, err = svc.AcceptResponse(ctx, "author", "missing", rs[0].ID)
	assert.Equal(t, apperr.KindNotFound, kind(err))

	_, err = svc.AcceptResponse(ctx, "bob", "m1", rs[0].ID)
	assert.ErrorIs(t, err, ErrNotPostAuthor)

	_, err = svc.AcceptResponse(ctx, "author", "share", rs[0].ID)
	assert.ErrorIs(t, err, ErrNotMeetup)

	_, err = svc.AcceptResponse(ctx, "author", "m2", rs[0].ID)
	assert.ErrorIs(t, err, ErrResponseNotFound, "response belongs to another post")

	_, err = svc.AcceptResponse(ctx, "author", "m1", hi.ID)
	assert.ErrorIs(t, err, ErrResponseNotFound, "hi is not a respond")

	_, err = svc.AcceptResponse(ctx, "author", "m1", "nope")
	assert.ErrorIs(t, err, ErrResponseNotFound)

	g := w.greetings[rs[0].ID]
	g.Status = StatusRejected
	w.greetings[rs[0].ID] = g
	_, err = svc.AcceptResponse(ctx, "author", "m1", rs[0].ID)
	assert.ErrorIs(t, err, ErrResponseNotPending)
}

func TestAcceptResponse_ConcurrentExactlyOneWins(t *testing.T) {
	svc, w, c := newTestService()
	w.addMeetup("m1", "author", posts.MeetupOpen)
	rs := respondAll(t, svc, c, "m1", "bob", "carl")

	var (
		wg   sync.WaitGroup
		errs = make([]error, len(rs))
	)
	for i, r := range rs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = svc.AcceptResponse(context.Background(), "author", "m1", id)
		}(i, r.ID)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case kind(err) == apperr.KindConflict:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	var accepted int
	for _, g := range w.greetings {
		if g.Type == TypeRespond && g.Status == StatusAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
}

// -------------------------
// Inbox / HiSentTo
// -------------------------

func TestInboxAndHiSent(t *testing.T) {
	svc, _, c := newTestService()
	ctx := context.Background()

	_, err := svc.SendHi(ctx, "bob", "author", "hello")
	require.NoError(t, err)
	c.advance(time.Second)
	_, err = svc.SendHi(ctx, "carl", "author", "")
	require.NoError(t, err)

	items, err := svc.Inbox(ctx, "author")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "carl", items[0].Greeting.SenderID)
	require.NotNil(t, items[1].Dog)
	assert.Equal(t, "Beagle", items[1].Dog.Breed)

	sent, err := svc.HiSentTo(ctx, "bob", []string{"author", "carl"})
	require.NoError(t, err)
	assert.True(t, sent["author"])
	assert.False(t, sent["carl"])

	sent, err = svc.HiSentTo(ctx, "", []string{"author"})
	require.NoError(t, err)
	assert.Empty(t, sent)
}
