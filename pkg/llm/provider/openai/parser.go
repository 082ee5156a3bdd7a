package openai

import (
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/openai/openai-go/v3"

	"github.com/papercomputeco/uistream/pkg/llm"
)

// reasoningKeys are the non-standard delta fields OpenAI-compatible gateways
// use for "thinking" text (OpenRouter uses "reasoning", DeepSeek and vLLM use
// "reasoning_content").
var reasoningKeys = []string{"reasoning", "reasoning_content"}

// pendingCall accumulates the fragments of one tool call, keyed by the
// provider's tool call index.
type pendingCall struct {
	id      string
	name    string
	args    string
	started bool

	// held are argument characters received before the call could be
	// announced (id or name not yet known).
	held []string
}

// ChunkParser converts OpenAI chat completion chunks into normalized events.
// A parser holds per-call state and must not be reused across model calls.
type ChunkParser struct {
	logger *slog.Logger

	calls map[int64]*pendingCall
	usage *llm.Usage
	done  bool
}

// NewChunkParser creates a parser for a single model call.
func NewChunkParser(logger *slog.Logger) *ChunkParser {
	return &ChunkParser{
		logger: logger,
		calls:  make(map[int64]*pendingCall),
	}
}

// Usage returns the most recent usage reported by the provider, if any.
func (p *ChunkParser) Usage() *llm.Usage {
	return p.usage
}

// Parse converts one chunk into zero or more events. Chunks without any
// recognizable content produce no events. Chunks received after the
// completion event only contribute usage.
func (p *ChunkParser) Parse(chunk openai.ChatCompletionChunk) []llm.Event {
	if chunk.Usage.TotalTokens > 0 {
		p.usage = &llm.Usage{
			PromptTokens:     int(chunk.Usage.PromptTokens),
			CompletionTokens: int(chunk.Usage.CompletionTokens),
			TotalTokens:      int(chunk.Usage.TotalTokens),
		}
	}

	if p.done || len(chunk.Choices) == 0 {
		return nil
	}

	var events []llm.Event

	choice := chunk.Choices[0]
	delta := choice.Delta

	if reasoning := extractReasoning(delta.RawJSON()); reasoning != "" {
		events = append(events, llm.ReasoningDelta{Content: reasoning})
	}

	if delta.Content != "" {
		events = append(events, llm.TextDelta{Content: delta.Content})
	}

	for _, tc := range delta.ToolCalls {
		events = append(events, p.parseToolCall(tc)...)
	}

	if choice.FinishReason != "" {
		events = append(events, p.complete(string(choice.FinishReason))...)
	}

	return events
}

func (p *ChunkParser) parseToolCall(tc openai.ChatCompletionChunkChoiceDeltaToolCall) []llm.Event {
	call, ok := p.calls[tc.Index]
	if !ok {
		call = &pendingCall{}
		p.calls[tc.Index] = call
	}

	if tc.ID != "" && call.id == "" {
		call.id = tc.ID
	}
	if tc.Function.Name != "" && call.name == "" {
		call.name = tc.Function.Name
	}

	var events []llm.Event

	if !call.started && call.id != "" && call.name != "" {
		call.started = true
		events = append(events, llm.ToolCallStart{ID: call.id, Name: call.name})
		for _, ch := range call.held {
			events = append(events, llm.ToolCallDelta{ID: call.id, ArgsFragment: ch})
		}
		call.held = nil
	}

	if tc.Function.Arguments == "" {
		return events
	}

	call.args += tc.Function.Arguments
	for _, r := range tc.Function.Arguments {
		ch := string(r)
		if call.started {
			events = append(events, llm.ToolCallDelta{ID: call.id, ArgsFragment: ch})
		} else {
			call.held = append(call.held, ch)
		}
	}

	return events
}

// complete emits ToolCallComplete for every named call in index order,
// followed by the single ResponseComplete.
func (p *ChunkParser) complete(finishReason string) []llm.Event {
	p.done = true

	indexes := make([]int64, 0, len(p.calls))
	for idx := range p.calls {
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	events := make([]llm.Event, 0, len(indexes)+1)
	for _, idx := range indexes {
		call := p.calls[idx]
		if !call.started {
			p.logger.Warn("dropping tool call without a resolved name",
				"tool_call_id", call.id,
				"index", idx,
				"arguments_length", len(call.args),
			)
			continue
		}
		events = append(events, llm.ToolCallComplete{
			ID:        call.id,
			Name:      call.name,
			Arguments: call.args,
		})
	}

	return append(events, llm.ResponseComplete{
		FinishReason: finishReason,
		Usage:        p.usage,
	})
}

func extractReasoning(raw string) string {
	if raw == "" {
		return ""
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return ""
	}

	for _, key := range reasoningKeys {
		if text, ok := fields[key].(string); ok && text != "" {
			return text
		}
	}
	return ""
}
