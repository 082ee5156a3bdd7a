package uistream

import (
	"context"
	"io"
	"time"

	"github.com/papercomputeco/uistream/pkg/sse"
)

// Sink receives the frames of one run in order.
type Sink interface {
	// Send writes one frame. An error means the client is gone and the run
	// must stop writing.
	Send(ctx context.Context, f Frame) error

	// Done writes the [DONE] terminator.
	Done(ctx context.Context) error
}

// SSESink frames each Frame as a "data:" event.
type SSESink struct {
	w *sse.Writer
}

// NewSSESink returns a Sink writing SSE frames to w.
func NewSSESink(w io.Writer) *SSESink {
	return &SSESink{w: sse.NewWriter(w)}
}

func (s *SSESink) Send(_ context.Context, f Frame) error {
	data, err := Marshal(f)
	if err != nil {
		return err
	}
	return s.w.WriteData(data)
}

func (s *SSESink) Done(context.Context) error {
	return s.w.WriteDone()
}

// pacedSink waits delay between consecutive writes.
type pacedSink struct {
	next  Sink
	delay time.Duration
	sent  bool
}

// Paced wraps next so consecutive writes are at least delay apart. The wait
// is abandoned when ctx is done.
func Paced(next Sink, delay time.Duration) Sink {
	if delay <= 0 {
		return next
	}
	return &pacedSink{next: next, delay: delay}
}

func (p *pacedSink) Send(ctx context.Context, f Frame) error {
	if err := p.wait(ctx); err != nil {
		return err
	}
	return p.next.Send(ctx, f)
}

func (p *pacedSink) Done(ctx context.Context) error {
	if err := p.wait(ctx); err != nil {
		return err
	}
	return p.next.Done(ctx)
}

func (p *pacedSink) wait(ctx context.Context) error {
	if !p.sent {
		p.sent = true
		return nil
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
