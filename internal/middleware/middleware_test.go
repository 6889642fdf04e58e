package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pawpals/internal/platform/logger"
	"pawpals/internal/ports/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]string

func (s stubVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	uid, ok := s[token]
	if !ok {
		return auth.Claims{}, errors.New("bad token")
	}
	return auth.Claims{UserID: uid, SessionID: "jti-" + uid}, nil
}

func claimsProbe(got *auth.Claims, ok *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *ok = GetClaims(r.Context())
	})
}

func TestAuthContext_WithVerifier(t *testing.T) {
	mw := AuthContext(stubVerifier{"good": "u1"})

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"valid bearer", "Bearer good", "u1"},
		{"case insensitive scheme", "bearer good", "u1"},
		{"invalid token", "Bearer nope", ""},
		{"no scheme", "good", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got auth.Claims
			var ok bool
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			mw(claimsProbe(&got, &ok)).ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tc.want != "", ok)
			assert.Equal(t, tc.want, got.UserID)
		})
	}

	var got auth.Claims
	var ok bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DebugUserHeader, "intruder")
	mw(claimsProbe(&got, &ok)).ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, ok, "debug header ignored when a verifier is set")
}

func TestAuthContext_DevMode(t *testing.T) {
	var got auth.Claims
	var ok bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DebugUserHeader, " dev-user ")
	AuthContext(nil)(claimsProbe(&got, &ok)).ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, ok)
	assert.Equal(t, "dev-user", got.UserID)
	assert.Empty(t, got.SessionID)
}

func TestGetClaims_EmptyUserID(t *testing.T) {
	_, ok := GetClaims(WithClaims(context.Background(), auth.Claims{UserID: "  "}))
	assert.False(t, ok)
	assert.Equal(t, "", UserID(context.Background()))
	assert.Equal(t, "u9", UserID(WithClaims(context.Background(), auth.Claims{UserID: "u9"})))
}

type entry struct {
	level  string
	fields map[string]any
}

type recLogger struct {
	base    map[string]any
	entries *[]entry
}

func (l recLogger) With(fields map[string]any) logger.Logger {
	merged := map[string]any{}
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return recLogger{base: merged, entries: l.entries}
}

func (l recLogger) log(level string, fields map[string]any) {
	all := map[string]any{}
	for k, v := range l.base {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}
	*l.entries = append(*l.entries, entry{level: level, fields: all})
}

func (l recLogger) Debug(_ string, f map[string]any) { l.log("debug", f) }
func (l recLogger) Info(_ string, f map[string]any)  { l.log("info", f) }
func (l recLogger) Warn(_ string, f map[string]any)  { l.log("warn", f) }
func (l recLogger) Error(_ string, f map[string]any) { l.log("error", f) }

func TestRequestLogger(t *testing.T) {
	var entries []entry
	base := recLogger{entries: &entries}

	handler := func(status int) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Debug("inside", nil)
			if status != 0 {
				w.WriteHeader(status)
			}
			_, _ = w.Write([]byte("ok"))
		})
	}

	for _, tc := range []struct {
		status int
		level  string
	}{
		{0, "info"},
		{http.StatusTeapot, "warn"},
		{http.StatusBadGateway, "error"},
	} {
		entries = nil
		h := chimw.RequestID(RequestLogger(base)(handler(tc.status)))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dogs", nil))

		require.Len(t, entries, 2)
		assert.NotEmpty(t, entries[0].fields["request_id"], "context logger carries request_id")
		last := entries[1]
		assert.Equal(t, tc.level, last.level)
		assert.Equal(t, "/dogs", last.fields["path"])
		assert.Equal(t, 2, last.fields["bytes"])
	}
}
