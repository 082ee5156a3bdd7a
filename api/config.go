// Package api provides an HTTP API server for inspecting stored chat
// transcripts and for calling the registered tools over MCP.
package api

import (
	"time"

	"github.com/papercomputeco/uistream/pkg/tools"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Registry is exposed over MCP at /mcp when set.
	Registry *tools.Registry

	// ToolTimeout bounds each MCP tool call. Zero uses the executor default.
	ToolTimeout time.Duration
}
