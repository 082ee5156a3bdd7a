// Package openai implements llm.Model on top of the official openai-go client.
// It serves both the OpenAI API and OpenAI-compatible gateways such as
// OpenRouter.
package openai

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
	"github.com/openai/openai-go/v3/shared"

	"github.com/papercomputeco/uistream/pkg/llm"
)

// Config configures an OpenAI-compatible model client.
type Config struct {
	// Provider is the name reported by Name (e.g. "openai", "openrouter").
	Provider string

	// APIKey is the bearer token sent to the upstream.
	APIKey string

	// BaseURL overrides the client's default base URL. Empty uses the
	// OpenAI API.
	BaseURL string

	// UserAgent, when set, replaces the SDK's User-Agent header.
	UserAgent string

	// Logger is the configured slog logger
	Logger *slog.Logger

	// RequestOptions are appended to the client options (tests use this to
	// inject an HTTP client).
	RequestOptions []option.RequestOption
}

// Model is an llm.Model backed by the Chat Completions streaming API.
type Model struct {
	provider string
	client   openai.Client
	logger   *slog.Logger
}

// New creates a new Model.
func New(c Config) (*Model, error) {
	if c.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	opts := []option.RequestOption{option.WithAPIKey(c.APIKey)}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}
	if c.UserAgent != "" {
		opts = append(opts, option.WithHeader("User-Agent", c.UserAgent))
	}
	opts = append(opts, c.RequestOptions...)

	return &Model{
		provider: c.Provider,
		client:   openai.NewClient(opts...),
		logger:   c.Logger,
	}, nil
}

// Name returns the provider name.
func (m *Model) Name() string {
	return m.provider
}

// Stream starts a streaming chat completion.
func (m *Model) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("no messages provided for completion")
	}

	params := buildParams(req)

	m.logger.Debug("opening upstream stream",
		"provider", m.provider,
		"model", req.Model,
		"message_count", len(req.Messages),
		"tool_count", len(req.Tools),
	)

	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	return newStream(stream, m.logger), nil
}

func buildParams(req *llm.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: req.Model,
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}

	for _, msg := range req.Messages {
		params.Messages = append(params.Messages, convertMessage(msg))
	}

	for _, tool := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  shared.FunctionParameters(tool.Parameters),
		}))
	}

	if len(params.Tools) > 0 {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		}
	}

	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	return params
}

func convertMessage(msg llm.Message) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case llm.RoleSystem:
		return openai.SystemMessage(msg.Content)
	case llm.RoleTool:
		return openai.ToolMessage(msg.Content, msg.ToolCallID)
	case llm.RoleAssistant:
		assistant := openai.ChatCompletionAssistantMessageParam{}
		if msg.Content != "" {
			assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
				OfString: openai.String(msg.Content),
			}
		}
		for _, tc := range msg.ToolCalls {
			assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				},
			})
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
	default:
		return openai.UserMessage(msg.Content)
	}
}

// stream adapts an openai-go SSE stream into an llm.Stream.
type stream struct {
	upstream *ssestream.Stream[openai.ChatCompletionChunk]
	parser   *ChunkParser
	acc      openai.ChatCompletionAccumulator
	logger   *slog.Logger

	pending []llm.Event
	done    bool
}

func newStream(upstream *ssestream.Stream[openai.ChatCompletionChunk], logger *slog.Logger) *stream {
	return &stream{
		upstream: upstream,
		parser:   NewChunkParser(logger),
		logger:   logger,
	}
}

// Next returns the next normalized event, or io.EOF when exhausted.
func (s *stream) Next() (llm.Event, error) {
	for len(s.pending) == 0 {
		if s.done {
			return nil, io.EOF
		}

		if !s.upstream.Next() {
			s.done = true
			if err := s.upstream.Err(); err != nil {
				return nil, err
			}
			continue
		}

		chunk := s.upstream.Current()
		s.acc.AddChunk(chunk)
		s.pending = s.parser.Parse(chunk)
	}

	ev := s.pending[0]
	s.pending = s.pending[1:]

	if rc, ok := ev.(llm.ResponseComplete); ok {
		// Usage is sent in a trailing chunk after the finish reason when
		// include_usage is set; drain it before reporting completion.
		if err := s.drain(); err != nil {
			return nil, err
		}
		s.done = true
		rc.Usage = s.parser.Usage()
		return rc, nil
	}

	return ev, nil
}

func (s *stream) drain() error {
	for s.upstream.Next() {
		chunk := s.upstream.Current()
		s.acc.AddChunk(chunk)
		s.parser.Parse(chunk)
	}
	return s.upstream.Err()
}

// ToolCalls returns the tool calls of the accumulated, structured response.
func (s *stream) ToolCalls() []llm.ToolCall {
	if len(s.acc.Choices) == 0 {
		return nil
	}

	calls := make([]llm.ToolCall, 0, len(s.acc.Choices[0].Message.ToolCalls))
	for _, tc := range s.acc.Choices[0].Message.ToolCalls {
		calls = append(calls, llm.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return calls
}

// Close releases the upstream connection.
func (s *stream) Close() error {
	return s.upstream.Close()
}
