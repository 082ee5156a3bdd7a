package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/papercomputeco/uistream/pkg/conversation"
	"github.com/papercomputeco/uistream/pkg/credentials"
	"github.com/papercomputeco/uistream/pkg/storage"
	"github.com/papercomputeco/uistream/pkg/tools"
	"github.com/papercomputeco/uistream/pkg/uistream"
	"github.com/papercomputeco/uistream/server/header"
	"github.com/papercomputeco/uistream/server/worker"
)

const identityMessage = "AI Elements Go Backend"

// Server is the chat streaming server. Every POST /chat runs one translator
// over a fresh conversation and enqueues the finished transcript on the
// worker pool.
type Server struct {
	config     Config
	executor   *tools.Executor
	workerPool *worker.Pool
	logger     *slog.Logger
	app        *fiber.App
}

// New creates a new Server. pool may be nil, in which case transcripts are
// not persisted.
func New(config Config, pool *worker.Pool, logger *slog.Logger) (*Server, error) {
	if config.Resolver == nil {
		return nil, errors.New("credentials resolver is required")
	}
	if config.NewModel == nil {
		return nil, errors.New("model factory is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var executor *tools.Executor
	if config.Registry != nil {
		opts := []tools.ExecutorOption{tools.WithLogger(logger)}
		if config.ToolTimeout > 0 {
			opts = append(opts, tools.WithTimeout(config.ToolTimeout))
		}
		executor = tools.NewExecutor(config.Registry, opts...)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:     config,
		executor:   executor,
		workerPool: pool,
		logger:     logger,
		app:        app,
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(s.logRequests)
	if config.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     config.AllowOrigins,
			AllowCredentials: true,
			AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		}))
	}

	app.Post("/chat", s.handleChat)
	app.Get("/health", s.handleHealth)
	app.Get("/", s.handleRoot)

	return s, nil
}

// Run starts the chat server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting chat server",
		"listen", s.config.ListenAddr,
		"tools", s.toolNames(),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the chat server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting chat server",
		"listen", listener.Addr().String(),
		"tools", s.toolNames(),
	)
	return s.app.Listener(listener)
}

// Close shuts the HTTP server down and waits for queued transcripts to drain.
func (s *Server) Close() error {
	err := s.app.Shutdown()
	if s.workerPool != nil {
		s.workerPool.Close()
	}
	return err
}

func (s *Server) toolNames() []string {
	if s.config.Registry == nil {
		return nil
	}
	return s.config.Registry.Names()
}

// logRequests logs one line per request once the handler has returned.
// Streamed bodies are still being written at that point.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("request handled",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	)
	return err
}

// handleHealth reports liveness and whether credentials are configured.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":             "healthy",
		"timestamp":          float64(time.Now().UnixNano()) / float64(time.Second),
		"api_key_configured": s.config.Resolver.Configured(),
	})
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": identityMessage,
		"version": s.config.Version,
	})
}

// handleChat validates the request, resolves credentials and streams the
// translated model output. Only validation and configuration failures change
// the HTTP status; everything later is reported inside the stream.
func (s *Server) handleChat(c *fiber.Ctx) error {
	req, verr := parseChatRequest(c.Body())
	if verr != nil {
		s.logger.Warn("invalid chat request", "error", verr)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(detailResponse{Detail: verr.Details})
	}

	s.logger.Info("chat request",
		"model", *req.Model,
		"messages", len(req.Messages),
	)
	if req.WebSearch {
		s.logger.Debug("web search requested but not supported")
	}

	creds, err := s.config.Resolver.Resolve()
	if err != nil {
		if errors.Is(err, credentials.ErrNotConfigured) {
			s.logger.Error("chat request rejected", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(detailResponse{Detail: credentials.NotConfiguredDetail})
		}
		s.logger.Error("could not resolve credentials", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(detailResponse{Detail: err.Error()})
	}

	model, err := s.config.NewModel(creds)
	if err != nil {
		s.logger.Error("could not create model client", "provider", creds.Provider, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(detailResponse{Detail: err.Error()})
	}

	modelID := creds.Model
	if creds.Gateway && *req.Model != "" {
		modelID = *req.Model
	}

	conv := buildConversation(s.config.SystemPrompt, req.Messages, s.logger)

	opts := append([]uistream.Option{uistream.WithLogger(s.logger)}, s.config.TranslatorOptions...)
	translator := uistream.New(model, s.executor, opts...)

	header.SetUIMessageStreamHeaders(c)

	// io.Pipe gives per-frame backpressure: pw.Write blocks until fasthttp's
	// chunked body writer has consumed the frame and flushed it.
	pr, pw := io.Pipe()
	go s.stream(translator, conv, modelID, creds.Provider, strings.Clone(c.Path()), pw)

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

// stream runs the translator into pw. It uses its own context because
// fasthttp recycles the request context once the handler returns. A failed
// write means the client went away and cancels the run.
func (s *Server) stream(translator *uistream.Translator, conv *conversation.Conversation, modelID, provider, path string, pw *io.PipeWriter) {
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &cancelWriter{w: pw, cancel: cancel}
	started := time.Now()

	result, err := translator.Run(ctx, conv, modelID, uistream.NewSSESink(w))
	if err != nil {
		s.logger.Warn("chat stream ended with error",
			"model", modelID,
			"client_gone", w.failed,
			"error", err,
		)
	} else {
		s.logger.Info("chat completed",
			"model", modelID,
			"steps", result.Steps,
			"tool_calls", len(result.ToolCalls),
			"duration", time.Since(started),
		)
	}

	// The job is queued before the body is closed so that a drained pool
	// always holds every finished response.
	if result == nil || s.workerPool == nil {
		return
	}

	if result.Text != "" {
		conv.AddAssistantMessage(result.Text)
	}
	s.workerPool.Enqueue(worker.Job{
		Path:       path,
		Transcript: newTranscript(result, conv, provider, started, time.Now()),
	})
}

// cancelWriter cancels the run on the first write error.
type cancelWriter struct {
	w      io.Writer
	cancel context.CancelFunc
	failed bool
}

func (cw *cancelWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	if err != nil {
		cw.failed = true
		cw.cancel()
		return n, fmt.Errorf("client connection closed: %w", err)
	}
	return n, nil
}

// newTranscript captures a finished run for storage.
func newTranscript(result *uistream.Result, conv *conversation.Conversation, provider string, started, completed time.Time) *storage.Transcript {
	t := &storage.Transcript{
		ID:           result.MessageID,
		Provider:     provider,
		Model:        result.Model,
		StartedAt:    started,
		CompletedAt:  completed,
		Messages:     conv.Messages(),
		Text:         result.Text,
		Steps:        result.Steps,
		FinishReason: result.FinishReason,
		Usage:        result.Usage,
	}

	for _, tr := range result.ToolCalls {
		t.ToolCalls = append(t.ToolCalls, storage.ToolCallRecord{
			ID:     tr.Call.ID,
			Name:   tr.Call.Name,
			Input:  tr.Input,
			Status: tr.Output.Status(),
			Output: tr.Output.Payload,
		})
	}

	if result.Err != nil {
		t.Error = result.Err.Error()
	}

	return t
}
