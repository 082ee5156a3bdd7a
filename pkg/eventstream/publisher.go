package eventstream

import (
	"context"
	"errors"
)

var (
	// ErrNilTurnEvent is returned when a nil event is published.
	ErrNilTurnEvent = errors.New("nil turn event")

	// ErrMissingTranscript is returned for an event without a transcript;
	// backends key and partition events by transcript id.
	ErrMissingTranscript = errors.New("turn event has no transcript")

	// ErrClosed is returned by publishers used after Close.
	ErrClosed = errors.New("publisher closed")
)

// Publisher delivers turn events to an event stream backend. The worker pool
// calls PublishTurn from several goroutines at once.
type Publisher interface {
	PublishTurn(ctx context.Context, event *TurnCompletedEvent) error
	Close() error
}

// Validate reports whether event can be published.
func Validate(event *TurnCompletedEvent) error {
	switch {
	case event == nil:
		return ErrNilTurnEvent
	case event.Transcript == nil || event.Transcript.ID == "":
		return ErrMissingTranscript
	}
	return nil
}
