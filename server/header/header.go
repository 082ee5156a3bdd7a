// Package header sets the response headers of the UI message stream.
//
// The chat server writes a body of SSE-style frames but advertises it as
// plain text, which is what the AI SDK UI clients expect:
//
//	Client <--(text/plain frames)-- Server <--(event stream)-- Upstream LLM Provider
package header

import (
	"github.com/gofiber/fiber/v2"
)

const (
	// UIMessageStreamHeader marks a response as an AI SDK UI message stream.
	UIMessageStreamHeader = "x-vercel-ai-ui-message-stream"

	// UIMessageStreamVersion is the stream protocol version written to
	// UIMessageStreamHeader.
	UIMessageStreamVersion = "v1"

	// StreamContentType is the content type of the frame body.
	StreamContentType = "text/plain; charset=utf-8"
)

// streamHeaders are set on every streamed chat response.
var streamHeaders = [][2]string{
	{fiber.HeaderContentType, StreamContentType},
	{fiber.HeaderCacheControl, "no-cache"},
	{fiber.HeaderConnection, "keep-alive"},
	{UIMessageStreamHeader, UIMessageStreamVersion},
	// Reverse proxies such as nginx would otherwise hold frames back.
	{"X-Accel-Buffering", "no"},
}

// SetUIMessageStreamHeaders sets the headers of a UI message stream response
// on the Fiber context. It must be called before the body stream is attached.
func SetUIMessageStreamHeaders(c *fiber.Ctx) {
	for _, h := range streamHeaders {
		c.Set(h[0], h[1])
	}
}

// IsUIMessageStream reports whether a client-side response advertises the
// UI message stream protocol.
func IsUIMessageStream(get func(key string) string) bool {
	return get(UIMessageStreamHeader) == UIMessageStreamVersion
}
