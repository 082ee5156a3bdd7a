package llm

// Event is a normalized model stream event. The set of implementations is
// closed: TextDelta, ReasoningDelta, ToolCallStart, ToolCallDelta,
// ToolCallComplete and ResponseComplete.
//
// For a given tool call id, ToolCallStart precedes every ToolCallDelta for that
// id, which precede its ToolCallComplete. ResponseComplete is the last event of
// a stream and occurs once.
type Event interface {
	isEvent()
}

// TextDelta is an incremental piece of assistant text.
type TextDelta struct {
	Content string
}

// ReasoningDelta is an incremental piece of "thinking" content from a
// reasoning-capable model.
type ReasoningDelta struct {
	Content string
}

// ToolCallStart announces a tool call once both its id and name are known.
type ToolCallStart struct {
	ID   string
	Name string
}

// ToolCallDelta carries one unit (a single character) of a tool call's
// serialized arguments.
type ToolCallDelta struct {
	ID           string
	ArgsFragment string
}

// ToolCallComplete carries the fully buffered arguments of a named tool call.
type ToolCallComplete struct {
	ID        string
	Name      string
	Arguments string
}

// ResponseComplete terminates a model stream.
type ResponseComplete struct {
	FinishReason string
	Usage        *Usage
}

func (TextDelta) isEvent()        {}
func (ReasoningDelta) isEvent()   {}
func (ToolCallStart) isEvent()    {}
func (ToolCallDelta) isEvent()    {}
func (ToolCallComplete) isEvent() {}
func (ResponseComplete) isEvent() {}

// Finish reasons commonly reported by OpenAI-compatible providers.
const (
	FinishReasonStop      = "stop"
	FinishReasonLength    = "length"
	FinishReasonToolCalls = "tool_calls"
)
