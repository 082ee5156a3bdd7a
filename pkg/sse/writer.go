package sse

import (
	"encoding/json"
	"fmt"
	"io"
)

// flusher is implemented by buffered writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// Writer frames payloads as "data: <payload>\n\n" events. Each call writes one
// complete event and flushes it when the underlying writer is buffered.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer framing events onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteData writes one event carrying data. data must not contain newlines.
func (w *Writer) WriteData(data []byte) error {
	buf := make([]byte, 0, len(data)+8)
	buf = append(buf, "data: "...)
	buf = append(buf, data...)
	buf = append(buf, '\n', '\n')

	if _, err := w.w.Write(buf); err != nil {
		return fmt.Errorf("writing sse event: %w", err)
	}

	if f, ok := w.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flushing sse event: %w", err)
		}
	}
	return nil
}

// WriteJSON marshals v and writes it as one event.
func (w *Writer) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling sse payload: %w", err)
	}
	return w.WriteData(data)
}

// WriteDone writes the stream terminator.
func (w *Writer) WriteDone() error {
	return w.WriteData([]byte(DoneData))
}
