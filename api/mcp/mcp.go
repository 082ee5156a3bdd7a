// Package mcp provides an MCP (Model Context Protocol) server that exposes the
// chat server's tool registry to MCP clients.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/uistream/pkg/tools"
	"github.com/papercomputeco/uistream/pkg/utils"
)

type Config struct {
	// Registry holds the tools to expose.
	Registry *tools.Registry

	// ToolTimeout bounds each tool call. Zero uses the executor default.
	ToolTimeout time.Duration

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	executor  *tools.Executor
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with one MCP tool per registered tool.
func NewServer(c Config) (*Server, error) {
	if c.Registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	opts := []tools.ExecutorOption{tools.WithLogger(c.Logger)}
	if c.ToolTimeout > 0 {
		opts = append(opts, tools.WithTimeout(c.ToolTimeout))
	}

	s := &Server{
		config:   c,
		executor: tools.NewExecutor(c.Registry, opts...),
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "uistream",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	for _, spec := range c.Registry.Specs() {
		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.Parameters,
		}, s.toolHandler(spec.Name))
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying MCP server, for in-process transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// toolHandler runs the named tool through the executor. Tool failures are
// reported as error results so the calling model can see them.
func (s *Server) toolHandler(name string) mcp.ToolHandlerFor[map[string]any, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		logger := s.config.Logger
		call := tools.Call{
			ID:   "mcp-" + uuid.NewString(),
			Name: name,
			Args: args,
		}
		if call.Args == nil {
			call.Args = map[string]any{}
		}

		out, err := s.executor.Execute(ctx, call, func(o tools.Output) error {
			if o.Preliminary {
				logger.Debug("MCP tool call started", "tool", name, "text", o.Payload["text"])
			}
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("executing %s: %w", name, err)
		}

		if out.Status() == tools.StatusError {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: fmt.Sprintf("%v", out.Payload["error"])},
				},
			}, nil, nil
		}

		text, err := json.Marshal(out.Payload)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding %s output: %w", name, err)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(text)},
			},
		}, nil, nil
	}
}
