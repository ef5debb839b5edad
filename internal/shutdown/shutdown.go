// Package shutdown implements the drain-and-flush contract: every owned
// store and producer registers a flush function, and Shutdown runs them all
// under one overall deadline before the process exits.
package shutdown

import (
	"context"
	"time"

	"github.com/jyasuu/ticket-master/internal/observability"
)

type component struct {
	name  string
	flush func(context.Context) error
}

type Coordinator struct {
	timeout    time.Duration
	components []component
	log        observability.Logger
}

func NewCoordinator(timeout time.Duration, log observability.Logger) *Coordinator {
	return &Coordinator{timeout: timeout, log: log}
}

func (c *Coordinator) Register(name string, flush func(context.Context) error) {
	c.components = append(c.components, component{name: name, flush: flush})
}

// Shutdown flushes every registered component in registration order. A
// component failure is logged and does not stop the remaining flushes; the
// first error is returned.
func (c *Coordinator) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var firstErr error
	for _, comp := range c.components {
		c.log.WithField("component", comp.name).Info("flushing")
		if err := comp.flush(ctx); err != nil {
			c.log.WithField("component", comp.name).WithError(err).Error("flush failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
