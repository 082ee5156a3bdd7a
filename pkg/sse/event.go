// Package sse implements the two ends of the "data: <payload>\n\n" framing
// used by the chat stream: a Writer that frames payloads for a downstream
// client, and a Reader that parses events back out, optionally copying the
// raw lines elsewhere (the terminal client uses that to record a chat
// stream).
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" (per the SSE spec, multiple data fields are joined
	// with a single newline).
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}

// DoneData is the payload of the frame that terminates a stream.
const DoneData = "[DONE]"

// IsDone reports whether the event is the stream terminator.
func (e *Event) IsDone() bool {
	return e != nil && e.Data == DoneData
}
