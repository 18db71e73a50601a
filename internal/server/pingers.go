package server

import (
	"context"
	"fmt"
)

// healthChecker is implemented by the search backends; both the OpenSearch
// client and the Qdrant searcher expose a Ping method.
type healthChecker interface {
	Ping(ctx context.Context) error
}

// backendPinger adapts a search backend into a named readiness probe.
// It satisfies the Pinger interface and is used by GET /ready.
type backendPinger struct {
	// backend is the search client to probe.
	backend healthChecker
	// name identifies the backend in readiness responses.
	name string
}

// NewBackendPinger constructs a readiness probe for a search backend.
// name should be the dependency label, e.g. "opensearch" or "qdrant".
func NewBackendPinger(backend healthChecker, name string) Pinger {
	return &backendPinger{backend: backend, name: name}
}

// Name returns the dependency label used in readiness responses.
func (p *backendPinger) Name() string { return p.name }

// Ping probes the backend for reachability.
func (p *backendPinger) Ping(ctx context.Context) error {
	if err := p.backend.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}
