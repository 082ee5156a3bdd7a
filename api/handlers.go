package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/uistream/pkg/llm"
	"github.com/papercomputeco/uistream/pkg/storage"
	"github.com/papercomputeco/uistream/pkg/utils"
)

const (
	maxListLimit  = 500
	previewLength = 120
)

// TranscriptSummary is the list view of a stored transcript.
type TranscriptSummary struct {
	ID           string    `json:"id"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	DurationMs   int64     `json:"duration_ms"`
	Steps        int       `json:"steps"`
	ToolCalls    []string  `json:"tool_calls,omitempty"`
	FinishReason string    `json:"finish_reason,omitempty"`
	Preview      string    `json:"preview"`
	Error        string    `json:"error,omitempty"`
}

// ListTranscriptsResponse is the body of GET /transcripts.
type ListTranscriptsResponse struct {
	Transcripts []TranscriptSummary `json:"transcripts"`
	Count       int                 `json:"count"`
}

func summarize(t *storage.Transcript) TranscriptSummary {
	s := TranscriptSummary{
		ID:           t.ID,
		Provider:     t.Provider,
		Model:        t.Model,
		StartedAt:    t.StartedAt,
		CompletedAt:  t.CompletedAt,
		DurationMs:   t.Duration().Milliseconds(),
		Steps:        t.Steps,
		FinishReason: t.FinishReason,
		Preview:      utils.Truncate(t.Text, previewLength),
		Error:        t.Error,
	}
	for _, tc := range t.ToolCalls {
		s.ToolCalls = append(s.ToolCalls, tc.Name)
	}
	return s
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListTranscripts returns the most recent transcripts first.
func (s *Server) handleListTranscripts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", storage.DefaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "limit must be between 1 and 500"})
	}

	transcripts, err := s.driver.List(c.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list transcripts", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list transcripts"})
	}

	resp := ListTranscriptsResponse{
		Transcripts: make([]TranscriptSummary, 0, len(transcripts)),
		Count:       len(transcripts),
	}
	for _, t := range transcripts {
		resp.Transcripts = append(resp.Transcripts, summarize(t))
	}

	return c.JSON(resp)
}

// handleGetTranscript returns a single transcript by its message id.
func (s *Server) handleGetTranscript(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "id parameter required"})
	}

	t, err := s.driver.Get(c.Context(), id)
	if err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "transcript not found"})
		}
		s.logger.Error("failed to get transcript", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to get transcript"})
	}

	return c.JSON(t)
}
