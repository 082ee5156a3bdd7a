// Package server provides the chat endpoint that translates model output into
// an AI SDK UI message stream.
package server

import (
	"time"

	"github.com/papercomputeco/uistream/pkg/credentials"
	"github.com/papercomputeco/uistream/pkg/llm"
	"github.com/papercomputeco/uistream/pkg/tools"
	"github.com/papercomputeco/uistream/pkg/uistream"
)

// ModelFactory opens a model client for resolved credentials.
type ModelFactory func(creds *credentials.Resolved) (llm.Model, error)

// Config is the chat server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// AllowOrigins is the comma separated CORS origin list.
	AllowOrigins string

	// SystemPrompt is inserted once at the start of every conversation.
	SystemPrompt string

	// Resolver picks upstream credentials per request.
	Resolver *credentials.Resolver

	// NewModel builds the model client for a request's credentials.
	NewModel ModelFactory

	// Registry holds the tools offered to the model. A nil registry offers
	// no tools.
	Registry *tools.Registry

	// ToolTimeout bounds each tool call. Zero uses the executor default.
	ToolTimeout time.Duration

	// TranslatorOptions are applied to every run.
	TranslatorOptions []uistream.Option

	// Version is reported by the identity endpoint.
	Version string
}
