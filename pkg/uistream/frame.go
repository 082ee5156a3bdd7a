// Package uistream translates normalized model events into the AI SDK UI
// message stream: a sequence of JSON frames, each sent as one "data:" event,
// terminated by "[DONE]".
package uistream

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Frame types as they appear in the "type" field.
const (
	TypeStart               = "start"
	TypeStartStep           = "start-step"
	TypeTextStart           = "text-start"
	TypeTextDelta           = "text-delta"
	TypeTextEnd             = "text-end"
	TypeReasoningStart      = "reasoning-start"
	TypeReasoningDelta      = "reasoning-delta"
	TypeReasoningEnd        = "reasoning-end"
	TypeToolInputStart      = "tool-input-start"
	TypeToolInputDelta      = "tool-input-delta"
	TypeToolInputAvailable  = "tool-input-available"
	TypeToolOutputAvailable = "tool-output-available"
	TypeFinishStep          = "finish-step"
	TypeFinish              = "finish"
	TypeError               = "error"
)

// Frame is one downstream frame. The set of implementations is closed.
type Frame interface {
	Type() string
	isFrame()
}

// ProviderMetadata is always sent as an empty object.
type ProviderMetadata struct{}

// Start opens the assistant message. It is sent once per run.
type Start struct {
	MessageID string `json:"messageId"`
}

// StartStep opens a step. Each model call is one step.
type StartStep struct{}

// TextStart opens a text block.
type TextStart struct {
	ID               string           `json:"id"`
	ProviderMetadata ProviderMetadata `json:"providerMetadata"`
}

// TextDelta carries text of the open block with the same ID.
type TextDelta struct {
	ID    string `json:"id"`
	Delta string `json:"delta"`
}

// TextEnd closes a text block.
type TextEnd struct {
	ID string `json:"id"`
}

// ReasoningStart opens a reasoning block. Only reasoning models produce one.
type ReasoningStart struct {
	ID string `json:"id"`
}

// ReasoningDelta carries reasoning text.
type ReasoningDelta struct {
	ID    string `json:"id"`
	Delta string `json:"delta"`
}

// ReasoningEnd closes a reasoning block.
type ReasoningEnd struct {
	ID string `json:"id"`
}

// ToolInputStart announces a tool call before its arguments stream.
type ToolInputStart struct {
	ToolCallID string `json:"toolCallId"`
	ToolName   string `json:"toolName"`
}

// ToolInputDelta carries one fragment of the serialized arguments.
type ToolInputDelta struct {
	ToolCallID     string `json:"toolCallId"`
	InputTextDelta string `json:"inputTextDelta"`
}

// ToolInputAvailable carries the parsed arguments of a completed call.
type ToolInputAvailable struct {
	ToolCallID       string           `json:"toolCallId"`
	ToolName         string           `json:"toolName"`
	Input            any              `json:"input"`
	ProviderMetadata ProviderMetadata `json:"providerMetadata"`
}

// ToolOutputAvailable carries a tool result. A preliminary output reports
// that the call is still running.
type ToolOutputAvailable struct {
	ToolCallID  string `json:"toolCallId"`
	Output      any    `json:"output"`
	Preliminary bool   `json:"preliminary,omitempty"`
}

// FinishStep closes the current step.
type FinishStep struct{}

// Finish closes the message. Only [DONE] follows it.
type Finish struct{}

// Error terminates a failed stream. No finish or [DONE] follows it.
type Error struct {
	ErrorText string `json:"error"`
}

func (Start) Type() string               { return TypeStart }
func (StartStep) Type() string           { return TypeStartStep }
func (TextStart) Type() string           { return TypeTextStart }
func (TextDelta) Type() string           { return TypeTextDelta }
func (TextEnd) Type() string             { return TypeTextEnd }
func (ReasoningStart) Type() string      { return TypeReasoningStart }
func (ReasoningDelta) Type() string      { return TypeReasoningDelta }
func (ReasoningEnd) Type() string        { return TypeReasoningEnd }
func (ToolInputStart) Type() string      { return TypeToolInputStart }
func (ToolInputDelta) Type() string      { return TypeToolInputDelta }
func (ToolInputAvailable) Type() string  { return TypeToolInputAvailable }
func (ToolOutputAvailable) Type() string { return TypeToolOutputAvailable }
func (FinishStep) Type() string          { return TypeFinishStep }
func (Finish) Type() string              { return TypeFinish }
func (Error) Type() string               { return TypeError }

func (Start) isFrame()               {}
func (StartStep) isFrame()           {}
func (TextStart) isFrame()           {}
func (TextDelta) isFrame()           {}
func (TextEnd) isFrame()             {}
func (ReasoningStart) isFrame()      {}
func (ReasoningDelta) isFrame()      {}
func (ReasoningEnd) isFrame()        {}
func (ToolInputStart) isFrame()      {}
func (ToolInputDelta) isFrame()      {}
func (ToolInputAvailable) isFrame()  {}
func (ToolOutputAvailable) isFrame() {}
func (FinishStep) isFrame()          {}
func (Finish) isFrame()              {}
func (Error) isFrame()               {}

// Marshal encodes f with "type" as the first key. HTML characters are not
// escaped.
func Marshal(f Frame) ([]byte, error) {
	body, err := encode(f)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s frame: %w", f.Type(), err)
	}

	typ, err := encode(f.Type())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(typ)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

// Parse decodes one frame payload. It is the inverse of Marshal.
func Parse(data []byte) (Frame, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parsing frame: %w", err)
	}

	switch head.Type {
	case TypeStart:
		return decode[Start](data)
	case TypeStartStep:
		return StartStep{}, nil
	case TypeTextStart:
		return decode[TextStart](data)
	case TypeTextDelta:
		return decode[TextDelta](data)
	case TypeTextEnd:
		return decode[TextEnd](data)
	case TypeReasoningStart:
		return decode[ReasoningStart](data)
	case TypeReasoningDelta:
		return decode[ReasoningDelta](data)
	case TypeReasoningEnd:
		return decode[ReasoningEnd](data)
	case TypeToolInputStart:
		return decode[ToolInputStart](data)
	case TypeToolInputDelta:
		return decode[ToolInputDelta](data)
	case TypeToolInputAvailable:
		return decode[ToolInputAvailable](data)
	case TypeToolOutputAvailable:
		return decode[ToolOutputAvailable](data)
	case TypeFinishStep:
		return FinishStep{}, nil
	case TypeFinish:
		return Finish{}, nil
	case TypeError:
		return decode[Error](data)
	default:
		return nil, fmt.Errorf("unknown frame type %q", head.Type)
	}
}

func decode[T Frame](data []byte) (Frame, error) {
	var f T
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s frame: %w", f.Type(), err)
	}
	return f, nil
}
