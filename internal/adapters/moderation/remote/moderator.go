// Package remote delega la moderación en un servicio HTTP externo.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"pawpals/internal/platform/httpclient"
)

var ErrUpstream = errors.New("moderation upstream error")

const checkPath = "/v1/moderate"

type Moderator struct {
	client *httpclient.Client

	// FailOpen permite el texto si el servicio no responde.
	FailOpen bool
}

func New(client *httpclient.Client, failOpen bool) *Moderator {
	return &Moderator{client: client, FailOpen: failOpen}
}

func (m *Moderator) IsAllowed(ctx context.Context, text string) (bool, error) {
	var out struct {
		Allowed bool `json:"allowed"`
	}
	err := m.client.DoJSON(ctx, http.MethodPost, checkPath, nil, map[string]string{"text": text}, &out)
	if err != nil {
		if m.FailOpen {
			return true, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return out.Allowed, nil
}
