package repository

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/casadecor/portfolio-backend/internal/catalog/remote"
)

const probePingTimeout = 5 * time.Second

// Probe caches a single reachability check against the remote store. The
// result is held until Invalidate, not on a TTL: a successful remote write
// invalidates it (remote state changed), and a failed remote call marks it
// unreachable directly.
type Probe struct {
	store remote.ProjectStore
	log   *logrus.Entry

	mu        sync.Mutex
	checked   bool
	connected bool
}

func NewProbe(store remote.ProjectStore) *Probe {
	return &Probe{
		store: store,
		log:   logrus.WithField("component", "probe"),
	}
}

// Ensure reports whether remote operations should be attempted. The first
// call after construction or Invalidate performs a real ping; later calls
// return the memoized answer.
func (p *Probe) Ensure(ctx context.Context) bool {
	if p.store == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.checked {
		return p.connected
	}

	pingCtx, cancel := context.WithTimeout(ctx, probePingTimeout)
	defer cancel()

	err := p.store.Ping(pingCtx)
	p.checked = true
	p.connected = err == nil

	if err != nil {
		// Timeouts and network errors collapse to "not connected"; the
		// distinction only matters for this log line.
		p.log.WithError(err).WithField("backend", p.store.Name()).
			Warn("remote store unreachable, serving from local store")
	} else {
		p.log.WithField("backend", p.store.Name()).Debug("remote store reachable")
	}

	return p.connected
}

// Invalidate drops the memoized state so the next Ensure re-checks.
func (p *Probe) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checked = false
}

// MarkUnreachable records a failed remote operation without waiting for the
// next ping.
func (p *Probe) MarkUnreachable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checked = true
	p.connected = false
}

// State describes the probe for the health endpoint.
func (p *Probe) State() string {
	if p.store == nil {
		return "unconfigured"
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case !p.checked:
		return "unknown"
	case p.connected:
		return "connected"
	default:
		return "disconnected"
	}
}
