package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	up   = PingFunc(func(context.Context) error { return nil })
	down = PingFunc(func(context.Context) error { return errors.New("refused") })
)

func TestCheck(t *testing.T) {
	cases := []struct {
		name     string
		c        Checker
		status   Status
		services map[string]string
	}{
		{
			name:     "all up",
			c:        Checker{Database: up, Storage: up, Cache: up},
			status:   StatusHealthy,
			services: map[string]string{"database": "ok", "storage": "ok", "cache": "ok"},
		},
		{
			name:     "cache not configured",
			c:        Checker{Database: up, Storage: up},
			status:   StatusHealthy,
			services: map[string]string{"database": "ok", "storage": "ok", "cache": "not_configured"},
		},
		{
			name:     "database down",
			c:        Checker{Database: down, Storage: up, Cache: up},
			status:   StatusDegraded,
			services: map[string]string{"database": "unavailable", "storage": "ok", "cache": "ok"},
		},
		{
			name:     "everything down",
			c:        Checker{Database: down, Storage: down, Cache: down},
			status:   StatusUnhealthy,
			services: map[string]string{"database": "unavailable", "storage": "unavailable", "cache": "unavailable"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rep := tc.c.Check(context.Background())
			assert.Equal(t, tc.status, rep.Status)
			assert.Equal(t, tc.services, rep.Services)
			assert.False(t, rep.Timestamp.IsZero())
		})
	}
}
