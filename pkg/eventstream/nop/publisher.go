// Package nop provides the publisher used when no event backend is
// configured. It drops events after validating them and counts what it
// dropped.
package nop

import (
	"context"
	"sync/atomic"

	"github.com/papercomputeco/uistream/pkg/eventstream"
)

// Publisher validates and drops turn events.
type Publisher struct {
	dropped atomic.Int64
	closed  atomic.Bool
}

// NewPublisher creates a Publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishTurn validates event and drops it.
func (p *Publisher) PublishTurn(_ context.Context, event *eventstream.TurnCompletedEvent) error {
	if p.closed.Load() {
		return eventstream.ErrClosed
	}
	if err := eventstream.Validate(event); err != nil {
		return err
	}

	p.dropped.Add(1)
	return nil
}

// Dropped returns how many valid events were accepted and discarded.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close marks the publisher closed. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.closed.Store(true)
	return nil
}
