package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/uistream/pkg/storage"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnCompleted is emitted after a streamed chat turn is stored.
	EventTypeTurnCompleted = "uistream.turn.completed"
)

// TurnCompletedEvent is a transport-neutral event payload for a completed turn.
type TurnCompletedEvent struct {
	SchemaVersion int                 `json:"schema_version"`
	EventType     string              `json:"event_type"`
	EventID       string              `json:"event_id"`
	EmittedAt     time.Time           `json:"emitted_at"`
	Source        EventSource         `json:"source"`
	RequestMeta   TurnRequestMeta     `json:"request_meta"`
	Transcript    *storage.Transcript `json:"transcript"`
}

// EventSource identifies where the turn originated.
type EventSource struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// TurnRequestMeta captures request lifecycle metadata for the event.
type TurnRequestMeta struct {
	Path         string    `json:"path,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	DurationMs   int64     `json:"duration_ms"`
	Steps        int       `json:"steps"`
	ToolCalls    int       `json:"tool_calls"`
	FinishReason string    `json:"finish_reason,omitempty"`
	Failed       bool      `json:"failed"`
}

// NewTurnCompletedEvent builds the event for a stored transcript.
func NewTurnCompletedEvent(t *storage.Transcript, path string, now time.Time) *TurnCompletedEvent {
	return &TurnCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnCompleted,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     now.UTC(),
		Source: EventSource{
			Provider: t.Provider,
			Model:    t.Model,
		},
		RequestMeta: TurnRequestMeta{
			Path:         path,
			StartedAt:    t.StartedAt,
			CompletedAt:  t.CompletedAt,
			DurationMs:   t.Duration().Milliseconds(),
			Steps:        t.Steps,
			ToolCalls:    len(t.ToolCalls),
			FinishReason: t.FinishReason,
			Failed:       t.Error != "",
		},
		Transcript: t,
	}
}
