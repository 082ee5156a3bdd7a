// Package conversation holds the ordered message log of a single chat request.
package conversation

import (
	"github.com/papercomputeco/uistream/pkg/llm"
)

// Conversation is an append-only message log. It is owned by one request and
// is not safe for concurrent use.
type Conversation struct {
	messages []llm.Message
}

// New creates a conversation. A non-empty systemPrompt is inserted once as the
// first message.
func New(systemPrompt string) *Conversation {
	c := &Conversation{}
	if systemPrompt != "" {
		c.AddSystemMessage(systemPrompt)
	}
	return c
}

func (c *Conversation) AddSystemMessage(content string) {
	c.messages = append(c.messages, llm.NewTextMessage(llm.RoleSystem, content))
}

func (c *Conversation) AddUserMessage(content string) {
	c.messages = append(c.messages, llm.NewTextMessage(llm.RoleUser, content))
}

// AddAssistantMessage appends an assistant turn. toolCalls are the calls the
// assistant requested in that turn; tool results must follow it.
func (c *Conversation) AddAssistantMessage(content string, toolCalls ...llm.ToolCall) {
	msg := llm.NewTextMessage(llm.RoleAssistant, content)
	if len(toolCalls) > 0 {
		msg.ToolCalls = append([]llm.ToolCall(nil), toolCalls...)
	}
	c.messages = append(c.messages, msg)
}

// AddToolResponse appends the result of the tool call with the given id.
func (c *Conversation) AddToolResponse(toolCallID, content string) {
	c.messages = append(c.messages, llm.Message{
		Role:       llm.RoleTool,
		Content:    content,
		ToolCallID: toolCallID,
	})
}

// Messages returns a copy of the log in insertion order.
func (c *Conversation) Messages() []llm.Message {
	out := make([]llm.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// HasUserTurn reports whether any user or assistant message has been added.
func (c *Conversation) HasUserTurn() bool {
	for _, m := range c.messages {
		if m.Role == llm.RoleUser || m.Role == llm.RoleAssistant {
			return true
		}
	}
	return false
}
