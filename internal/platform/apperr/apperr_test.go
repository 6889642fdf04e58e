package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"conflict", Conflict("taken"), http.StatusBadRequest},
		{"rate limited", RateLimited(12), http.StatusBadRequest},
		{"auth", Unauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden},
		{"not found", NotFound("gone"), http.StatusNotFound},
		{"wrapped", fmt.Errorf("ctx: %w", NotFound("gone")), http.StatusNotFound},
		{"plain", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestSentinelIdentity(t *testing.T) {
	errA := NotFound("dog not found")
	errB := NotFound("dog not found")

	wrapped := fmt.Errorf("repo: %w", errA)
	assert.True(t, errors.Is(wrapped, errA))
	assert.False(t, errors.Is(wrapped, errB))
}

func TestRateLimitedCarriesSeconds(t *testing.T) {
	e, ok := As(fmt.Errorf("x: %w", RateLimited(90)))
	assert.True(t, ok)
	assert.Equal(t, 90, e.RetryAfter)
	assert.Equal(t, KindConflict, e.Kind)
	assert.Contains(t, e.Error(), "90 seconds")
}
