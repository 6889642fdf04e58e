// Package health reporta el estado de las dependencias del servicio.
package health

import (
	"context"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

const (
	ServiceOK            = "ok"
	ServiceUnavailable   = "unavailable"
	ServiceNotConfigured = "not_configured"
)

const probeTimeout = 2 * time.Second

// Pinger es cualquier dependencia que sabe hacer un ping barato.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapta funciones a Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Checker: un Pinger nil se reporta como not_configured y no cuenta como caída.
type Checker struct {
	Database Pinger
	Storage  Pinger
	Cache    Pinger

	now func() time.Time
}

type Report struct {
	Status    Status
	Timestamp time.Time
	Services  map[string]string
}

func (c *Checker) Check(ctx context.Context) Report {
	now := time.Now
	if c.now != nil {
		now = c.now
	}

	probes := []struct {
		name string
		p    Pinger
	}{
		{"database", c.Database},
		{"storage", c.Storage},
		{"cache", c.Cache},
	}

	services := make(map[string]string, len(probes))
	down := 0
	for _, pr := range probes {
		if pr.p == nil {
			services[pr.name] = ServiceNotConfigured
			continue
		}
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := pr.p.Ping(pctx)
		cancel()
		if err != nil {
			services[pr.name] = ServiceUnavailable
			down++
			continue
		}
		services[pr.name] = ServiceOK
	}

	status := StatusHealthy
	switch {
	case down == len(probes):
		status = StatusUnhealthy
	case down > 0:
		status = StatusDegraded
	}
	return Report{Status: status, Timestamp: now().UTC(), Services: services}
}
