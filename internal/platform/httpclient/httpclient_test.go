package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New(Config{BaseURL: "http://svc.local/api/", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "http://svc.local/api", c.BaseURL)
	assert.Equal(t, "k", c.Headers["X-Api-Key"])
	assert.Equal(t, DefaultTimeout, c.HTTP.Timeout)

	c, err = New(Config{APIKey: "k", APIKeyHeader: "Authorization"})
	require.NoError(t, err)
	assert.Equal(t, "k", c.Headers["Authorization"])

	_, err = New(Config{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			assert.Equal(t, "k", r.Header.Get("X-Api-Key"))
			assert.Equal(t, "yes", r.Header.Get("X-Extra"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			_ = json.NewEncoder(w).Encode(map[string]string{"got": in["text"]})
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "nope", http.StatusForbidden)
		}
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, APIKey: "k"})
	require.NoError(t, err)
	ctx := context.Background()

	var out map[string]string
	err = c.DoJSON(ctx, http.MethodPost, "echo", map[string]string{"X-Extra": "yes"}, map[string]string{"text": "hola"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hola", out["got"])

	require.NoError(t, c.DoJSON(ctx, http.MethodGet, srv.URL+"/empty", nil, nil, &out))

	err = c.DoJSON(ctx, http.MethodGet, "/forbidden", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized, http.StatusForbidden))
	assert.False(t, IsStatus(err, http.StatusNotFound))
	assert.Contains(t, err.Error(), "nope")
}

func TestDoJSON_Misuse(t *testing.T) {
	var nilClient *Client
	assert.Error(t, nilClient.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil))

	c, err := New(Config{})
	require.NoError(t, err)
	assert.Error(t, c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil), "relative path needs BaseURL")
	assert.Error(t, c.DoJSON(context.Background(), http.MethodGet, " ", nil, nil, nil))
}
