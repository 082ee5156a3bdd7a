package sse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxLineSize bounds a single line of the stream. A tool output frame
// carrying a large result is the longest line the chat server writes.
const DefaultMaxLineSize = 1024 * 1024

// ErrLineTooLong is returned by Next when a line exceeds the reader's limit.
var ErrLineTooLong = errors.New("sse: line too long")

// Reader parses events from a stream of "field: value" lines separated by
// blank lines. Raw lines can optionally be copied to a second writer, which
// is how the terminal client records a chat stream while rendering it:
//
//	src ──▶ Reader.Next() ──▶ *Event
//	              │
//	              └──▶ tee io.Writer (raw lines)
//
// Lines may end in "\n", "\r\n" or "\r".
type Reader struct {
	br      *bufio.Reader
	tee     io.Writer
	maxLine int

	current Event
	hasData bool
	started bool
}

// NewReader returns a Reader over src.
func NewReader(src io.Reader) *Reader {
	return &Reader{
		br:      bufio.NewReaderSize(src, 64*1024),
		tee:     io.Discard,
		maxLine: DefaultMaxLineSize,
	}
}

// NewTeeReader returns a Reader over src that writes every raw line it reads,
// newline included, to dest.
func NewTeeReader(src io.Reader, dest io.Writer) *Reader {
	r := NewReader(src)
	if dest != nil {
		r.tee = dest
	}
	return r
}

// WithMaxLineSize changes the longest accepted line. Non-positive values keep
// the current limit.
func (r *Reader) WithMaxLineSize(n int) *Reader {
	if n > 0 {
		r.maxLine = n
	}
	return r
}

// Next returns the next event, blocking until a blank line completes one.
// It returns nil, nil once the source is exhausted; an event cut off by the
// end of the stream is still returned.
func (r *Reader) Next() (*Event, error) {
	for {
		line, err := r.readLine()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		eof := errors.Is(err, io.EOF)

		if line == "" {
			if r.hasData {
				return r.take(), nil
			}
			if eof {
				return nil, nil
			}
			continue
		}

		// ':' starts a comment, used for keep-alives.
		if !strings.HasPrefix(line, ":") {
			r.field(line)
		}

		if eof {
			if r.hasData {
				return r.take(), nil
			}
			return nil, nil
		}
	}
}

// readLine reads one line without its terminator and copies it to the tee.
// It returns io.EOF together with the final unterminated line, if any.
func (r *Reader) readLine() (string, error) {
	var b strings.Builder
	for {
		c, err := r.br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && b.Len() > 0 {
				if werr := r.write(b.String() + "\n"); werr != nil {
					return "", werr
				}
			}
			return r.strip(b.String()), err
		}

		switch c {
		case '\n':
			return r.strip(b.String()), r.write(b.String() + "\n")
		case '\r':
			if next, err := r.br.Peek(1); err == nil && next[0] == '\n' {
				_, _ = r.br.ReadByte()
			}
			return r.strip(b.String()), r.write(b.String() + "\n")
		}

		if b.Len() >= r.maxLine {
			return "", fmt.Errorf("%w: more than %d bytes", ErrLineTooLong, r.maxLine)
		}
		b.WriteByte(c)
	}
}

// strip drops a UTF-8 byte order mark at the very start of the stream.
func (r *Reader) strip(line string) string {
	if !r.started {
		r.started = true
		line = strings.TrimPrefix(line, "\ufeff")
	}
	return line
}

func (r *Reader) write(s string) error {
	_, err := io.WriteString(r.tee, s)
	return err
}

// field applies one "name:value" line to the event being built. A single
// space after the colon is dropped; a line without a colon names a field
// with an empty value.
func (r *Reader) field(line string) {
	name, value, _ := strings.Cut(line, ":")
	value = strings.TrimPrefix(value, " ")

	switch name {
	case "data":
		if r.hasData && r.current.Data != "" {
			r.current.Data += "\n"
		}
		r.current.Data += value
	case "event":
		r.current.Type = value
	case "id":
		r.current.ID = value
	default:
		return
	}
	r.hasData = true
}

func (r *Reader) take() *Event {
	ev := r.current
	r.current = Event{}
	r.hasData = false
	return &ev
}
