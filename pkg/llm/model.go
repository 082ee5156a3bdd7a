package llm

import (
	"context"
	"strings"
)

// Request is a provider-agnostic streaming chat completion request.
type Request struct {
	Model       string
	Messages    []Message
	Tools       []ToolSpec
	Temperature *float64
}

// Model opens streaming chat completions against an upstream provider.
type Model interface {
	// Name returns the provider name (e.g. "openrouter", "openai").
	Name() string

	// Stream starts a streaming completion. The stream is bound to ctx:
	// cancelling ctx aborts the upstream call.
	Stream(ctx context.Context, req *Request) (Stream, error)
}

// Stream is a finite, non-restartable sequence of normalized events.
type Stream interface {
	// Next returns the next event. It returns io.EOF once the stream is
	// exhausted.
	Next() (Event, error)

	// ToolCalls returns the authoritative tool calls of the response, built
	// from the provider's structured result rather than from incremental
	// deltas. It is meaningful once ResponseComplete has been returned.
	ToolCalls() []ToolCall

	// Close releases the underlying connection.
	Close() error
}

// IsReasoningModel reports whether model identifies a reasoning-capable
// variant whose "thinking" deltas should be forwarded to clients.
func IsReasoningModel(model string) bool {
	id := strings.ToLower(model)
	if _, after, ok := strings.Cut(id, "/"); ok {
		id = after
	}

	for _, marker := range []string{"thinking", "reason", "-r1"} {
		if strings.Contains(id, marker) {
			return true
		}
	}

	for _, prefix := range []string{"o1", "o3", "o4"} {
		if id == prefix || strings.HasPrefix(id, prefix+"-") {
			return true
		}
	}

	return false
}
