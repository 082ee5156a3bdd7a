package storage

import (
	"errors"
	"time"

	"github.com/papercomputeco/uistream/pkg/llm"
)

// Transcript is the record of one /chat request: the conversation sent to the
// model, the tool calls executed while answering and the final outcome.
type Transcript struct {
	// ID is the streamed message id ("msg-<uuid>").
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	// Messages is the full conversation including tool results.
	Messages []llm.Message `json:"messages"`

	Text         string           `json:"text"`
	Steps        int              `json:"steps"`
	ToolCalls    []ToolCallRecord `json:"tool_calls,omitempty"`
	FinishReason string           `json:"finish_reason,omitempty"`
	Usage        *llm.Usage       `json:"usage,omitempty"`

	// Error is the text of the error frame, if one was sent.
	Error string `json:"error,omitempty"`
}

// ToolCallRecord is one executed tool call.
type ToolCallRecord struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
	Status string         `json:"status"`
	Output any            `json:"output,omitempty"`
}

// Validate checks the fields every driver relies on.
func (t *Transcript) Validate() error {
	if t == nil {
		return errors.New("cannot store nil transcript")
	}
	if t.ID == "" {
		return errors.New("transcript id is required")
	}
	return nil
}

// Duration is the wall time of the request.
func (t *Transcript) Duration() time.Duration {
	if t.CompletedAt.IsZero() {
		return 0
	}
	return t.CompletedAt.Sub(t.StartedAt)
}
