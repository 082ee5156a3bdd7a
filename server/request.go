package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/uistream/pkg/conversation"
)

const (
	emptyMessageText = "[Empty message]"
	defaultUserText  = "Hello"
)

// ChatRequest is the body of POST /chat as sent by the AI SDK useChat hook.
type ChatRequest struct {
	Messages  []UIMessage `json:"messages"`
	Model     *string     `json:"model"`
	WebSearch bool        `json:"webSearch"`
}

// UIMessage is one message of the client's history.
type UIMessage struct {
	ID      string        `json:"id"`
	Role    string        `json:"role"`
	Parts   []MessagePart `json:"parts,omitempty"`
	Content *string       `json:"content,omitempty"`
	Files   []MessageFile `json:"files,omitempty"`
}

// MessagePart is one part of a UI message. Only text parts carry content.
type MessagePart struct {
	Type string  `json:"type"`
	Text *string `json:"text,omitempty"`
}

// MessageFile describes a file attached to a UI message.
type MessageFile struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	Size int64   `json:"size"`
	URL  *string `json:"url,omitempty"`
}

// requiredFields mirrors the nested objects of a chat request to record
// which keys were present. Empty strings are valid values.
type requiredFields struct {
	Messages []struct {
		ID    *json.RawMessage `json:"id"`
		Role  *json.RawMessage `json:"role"`
		Parts []struct {
			Type *json.RawMessage `json:"type"`
		} `json:"parts"`
		Files []struct {
			Name *json.RawMessage `json:"name"`
			Type *json.RawMessage `json:"type"`
			Size *json.RawMessage `json:"size"`
		} `json:"files"`
	} `json:"messages"`
}

// parseChatRequest decodes and validates body. Every problem found is
// reported in the returned *ValidationError.
func parseChatRequest(body []byte) (*ChatRequest, *ValidationError) {
	verr := &ValidationError{}

	var req ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			loc := []any{}
			for _, f := range strings.Split(typeErr.Field, ".") {
				if f != "" {
					loc = append(loc, f)
				}
			}
			verr.add(fmt.Sprintf("Input should be a valid %s", typeErr.Type.Kind()), "type_error", loc...)
		} else {
			verr.add("JSON decode error", "json_invalid")
		}
		return nil, verr
	}

	if req.Messages == nil {
		verr.missing("messages")
	}
	if req.Model == nil {
		verr.missing("model")
	}

	var present requiredFields
	if err := json.Unmarshal(body, &present); err != nil {
		verr.add("JSON decode error", "json_invalid")
		return nil, verr
	}

	for i, m := range present.Messages {
		if m.ID == nil {
			verr.missing("messages", i, "id")
		}
		if m.Role == nil {
			verr.missing("messages", i, "role")
		}
		for j, p := range m.Parts {
			if p.Type == nil {
				verr.missing("messages", i, "parts", j, "type")
			}
		}
		for j, f := range m.Files {
			if f.Name == nil {
				verr.missing("messages", i, "files", j, "name")
			}
			if f.Type == nil {
				verr.missing("messages", i, "files", j, "type")
			}
			if f.Size == nil {
				verr.missing("messages", i, "files", j, "size")
			}
		}
	}

	if len(verr.Details) > 0 {
		return nil, verr
	}
	return &req, nil
}

// Text flattens the message into model input: text parts joined by a space,
// else the plain content, else a placeholder. Attached file names are
// appended.
func (m UIMessage) Text() string {
	var content string
	switch {
	case len(m.Parts) > 0:
		texts := make([]string, 0, len(m.Parts))
		for _, p := range m.Parts {
			if p.Type == "text" && p.Text != nil && *p.Text != "" {
				texts = append(texts, *p.Text)
			}
		}
		content = strings.Join(texts, " ")
	case m.Content != nil && *m.Content != "":
		content = *m.Content
	default:
		content = emptyMessageText
	}

	if len(m.Files) > 0 {
		names := make([]string, 0, len(m.Files))
		for _, f := range m.Files {
			names = append(names, f.Name)
		}
		content += " [Files: " + strings.Join(names, ", ") + "]"
	}

	return content
}

// buildConversation replays the client history after the system prompt.
func buildConversation(systemPrompt string, messages []UIMessage, logger *slog.Logger) *conversation.Conversation {
	conv := conversation.New(systemPrompt)

	for _, m := range messages {
		switch m.Role {
		case "user":
			conv.AddUserMessage(m.Text())
		case "assistant":
			conv.AddAssistantMessage(m.Text())
		default:
			logger.Debug("skipping message with unsupported role",
				"message_id", m.ID,
				"role", m.Role,
			)
		}
	}

	if !conv.HasUserTurn() {
		conv.AddUserMessage(defaultUserText)
	}

	return conv
}
