package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	byID map[string]User
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]User{}} }

func (r *testRepo) Create(_ context.Context, u User) error {
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Update(_ context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return ErrNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *testRepo) GetByPhone(_ context.Context, phone string) (User, error) {
	for _, u := range r.byID {
		if u.Phone == phone {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *testRepo) GetMany(_ context.Context, ids []string) (map[string]User, error) {
	out := map[string]User{}
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *testRepo) List(_ context.Context, limit, _ int) ([]User, error) {
	out := []User{}
	for _, u := range r.byID {
		if len(out) == limit {
			break
		}
		out = append(out, u)
	}
	return out, nil
}

type testTokens struct {
	issued  []string
	revoked []string
}

func (t *testTokens) Issue(_ context.Context, userID string) (Token, error) {
	t.issued = append(t.issued, userID)
	return Token{Value: "tok-" + userID, SessionID: "sess-" + userID}, nil
}

func (t *testTokens) Revoke(_ context.Context, sessionID string) error {
	t.revoked = append(t.revoked, sessionID)
	return nil
}

var t0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newTestService() (*Service, *testRepo, *testTokens) {
	repo := newTestRepo()
	tokens := &testTokens{}
	svc := NewService(repo, tokens, "123456")
	svc.now = func() time.Time { return t0 }
	return svc, repo, tokens
}

func TestLogin_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{Phone: "  ", Code: "123456"})
	assert.ErrorIs(t, err, ErrMissingLogin)

	_, err = svc.Login(ctx, LoginInput{Phone: "12ab5678", Code: "123456"})
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = svc.Login(ctx, LoginInput{Phone: "1234", Code: "123456"})
	assert.ErrorIs(t, err, ErrInvalidPhone, "too few digits")

	_, err = svc.Login(ctx, LoginInput{Phone: "+86 138-0000-1234", Code: "000000"})
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestLogin_CreatesThenReuses(t *testing.T) {
	svc, repo, tokens := newTestService()
	ctx := context.Background()

	first, err := svc.Login(ctx, LoginInput{Phone: "+86 138-0000-1234", Code: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "PawPal1234", first.User.Nickname)
	assert.True(t, first.User.Active)
	require.NotNil(t, first.User.LastLoginAt)
	assert.Equal(t, t0, *first.User.LastLoginAt)
	assert.Equal(t, "tok-"+first.User.ID, first.Token.Value)

	second, err := svc.Login(ctx, LoginInput{Phone: "+86 138-0000-1234", Code: "123456", Nickname: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "PawPal1234", second.User.Nickname)
	assert.Len(t, repo.byID, 1)
	assert.Len(t, tokens.issued, 2)

	u := repo.byID[first.User.ID]
	u.Active = false
	repo.byID[u.ID] = u
	_, err = svc.Login(ctx, LoginInput{Phone: "+86 138-0000-1234", Code: "123456"})
	assert.ErrorIs(t, err, ErrInactive)
}

func TestLogin_NicknameProvided(t *testing.T) {
	svc, _, _ := newTestService()
	res, err := svc.Login(context.Background(), LoginInput{Phone: "5550001", Code: "123456", Nickname: " Ana ", Avatar: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", res.User.Nickname)
	assert.Equal(t, "a.png", res.User.Avatar)

	_, err = svc.Login(context.Background(), LoginInput{Phone: "5550002", Code: "123456", Nickname: strings.Repeat("x", 51)})
	assert.ErrorIs(t, err, ErrNicknameLong)
}

func TestLogout(t *testing.T) {
	svc, _, tokens := newTestService()
	require.NoError(t, svc.Logout(context.Background(), ""))
	assert.Empty(t, tokens.revoked)

	require.NoError(t, svc.Logout(context.Background(), "sess-1"))
	assert.Equal(t, []string{"sess-1"}, tokens.revoked)
}

func TestCreateAndProfile(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Nickname: " "})
	assert.ErrorIs(t, err, ErrNicknameEmpty)
	_, err = svc.Create(ctx, CreateInput{Nickname: "Bo", Phone: "abc"})
	assert.ErrorIs(t, err, ErrInvalidPhone)

	u, err := svc.Create(ctx, CreateInput{Nickname: "Bo"})
	require.NoError(t, err)

	empty := "   "
	_, err = svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Nickname: &empty})
	assert.ErrorIs(t, err, ErrNicknameEmpty)

	nick, avatar := "Bobby", " b.png "
	up, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Nickname: &nick, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Bobby", up.Nickname)
	assert.Equal(t, "b.png", up.Avatar)

	_, err = svc.UpdateProfile(ctx, "missing", UpdateProfileInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsActiveAndGetMany(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	repo.byID["on"] = User{ID: "on", Active: true}
	repo.byID["off"] = User{ID: "off"}

	ok, err := svc.IsActive(ctx, "on")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsActive(ctx, "off")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsActive(ctx, "ghost")
	require.NoError(t, err, "unknown users are simply inactive")
	assert.False(t, ok)

	m, err := svc.GetMany(ctx, []string{"on", "ghost"})
	require.NoError(t, err)
	assert.Len(t, m, 1)

	m, err = svc.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, m)
}
