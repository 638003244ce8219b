// Package lifecycle coordinates process startup and graceful shutdown
// across the pipeline's dependencies, and exposes liveness/readiness
// checks for the HTTP health endpoints.
package lifecycle

import (
	"context"

	"github.com/nova-metrics/eventpipe/pkg/logger"
	"github.com/nova-metrics/eventpipe/pkg/messaging"
)

// Store is the readiness dependency the store package satisfies.
type Store interface {
	Count(ctx context.Context) (int64, error)
}

// Closer is anything that releases resources on shutdown.
type Closer interface {
	Close() error
}

// Manager owns the dependencies a process brought up, in init order,
// and closes them in reverse order on shutdown.
type Manager struct {
	broker  messaging.Broker
	store   Store
	closers []namedCloser
}

type namedCloser struct {
	name   string
	closer Closer
}

// New builds a Manager over the process's already-connected broker and
// store. Both must be live by the time New is called; Manager does not
// perform its own dial/connect.
func New(broker messaging.Broker, store Store) *Manager {
	return &Manager{broker: broker, store: store}
}

// Track registers an additional resource to close, in the order
// registered; Shutdown closes tracked resources in reverse.
func (m *Manager) Track(name string, c Closer) {
	m.closers = append(m.closers, namedCloser{name: name, closer: c})
}

// Liveness reports whether the process itself is up. Once the process
// has started, it is always alive; liveness never depends on an
// external dependency (that is what readiness is for).
func (m *Manager) Liveness(ctx context.Context) error {
	return nil
}

// Readiness reports whether the process can serve traffic: the broker
// connection is healthy and the store responds to a query.
func (m *Manager) Readiness(ctx context.Context) error {
	if m.broker != nil && !m.broker.Healthy(ctx) {
		return errNotReady("message broker unhealthy")
	}
	if m.store != nil {
		if _, err := m.store.Count(ctx); err != nil {
			return errNotReady("event store unreachable")
		}
	}
	return nil
}

// Shutdown closes tracked resources in reverse registration order,
// logging but not aborting on individual close failures so the rest of
// the chain still gets a chance to release.
func (m *Manager) Shutdown(ctx context.Context) {
	for i := len(m.closers) - 1; i >= 0; i-- {
		nc := m.closers[i]
		logger.L().InfoContext(ctx, "closing resource", "name", nc.name)
		if err := nc.closer.Close(); err != nil {
			logger.L().ErrorContext(ctx, "failed to close resource", "name", nc.name, "error", err)
		}
	}
}

type readinessError struct{ msg string }

func (e readinessError) Error() string { return e.msg }

func errNotReady(msg string) error { return readinessError{msg: msg} }
