// Package worker persists finished chat transcripts off the request path.
//
// The chat handler hands each transcript to a Pool once its stream has ended.
// Workers store it with a storage.Driver and, for transcripts not seen
// before, announce it on an eventstream.Publisher. A slow database or broker
// never delays frames to the client; when the queue is full the transcript is
// dropped and counted.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/papercomputeco/uistream/pkg/eventstream"
	"github.com/papercomputeco/uistream/pkg/storage"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 10 * time.Second
)

// Job is one finished transcript and the HTTP path that produced it.
type Job struct {
	Path       string
	Transcript *storage.Transcript
}

// Config configures a Pool. Only Driver is required.
type Config struct {
	Driver storage.Driver

	// Publisher, if set, receives a turn event for every newly stored
	// transcript. Publish failures are logged; the transcript stays stored.
	Publisher eventstream.Publisher

	NumWorkers uint
	QueueSize  uint

	// JobTimeout bounds storing and publishing one job together.
	JobTimeout time.Duration

	Logger *slog.Logger
}

// Stats counts what happened to the jobs handed to a Pool.
type Stats struct {
	Enqueued   int64
	Dropped    int64
	Stored     int64
	Duplicates int64
	Failed     int64
	Published  int64
}

// Pool runs a fixed set of workers over a bounded job queue.
type Pool struct {
	config *Config
	logger *slog.Logger
	queue  chan Job
	wg     sync.WaitGroup

	// mu guards closed so that Enqueue never sends on a closed queue.
	mu     sync.RWMutex
	closed bool

	enqueued, dropped, stored, duplicates, failed, published atomic.Int64
}

// NewPool fills in defaults for unset fields of c and starts the workers.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	p := &Pool{
		config: c,
		logger: c.Logger.With("component", "worker"),
		queue:  make(chan Job, c.QueueSize),
	}

	p.wg.Add(int(c.NumWorkers))
	for id := range c.NumWorkers {
		go p.run(id)
	}
	return p, nil
}

// Enqueue hands job to the workers without blocking. It reports false when
// the job was not accepted: no transcript, a full queue or a closed pool.
func (p *Pool) Enqueue(job Job) bool {
	if job.Transcript == nil {
		p.logger.Error("job not queued, nil transcript")
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.dropped.Add(1)
		p.logger.Warn("job not queued, pool closed", "transcript_id", job.Transcript.ID)
		return false
	}

	select {
	case p.queue <- job:
		p.enqueued.Add(1)
		p.logger.Debug("job queued", "transcript_id", job.Transcript.ID)
		return true
	default:
		p.dropped.Add(1)
		p.logger.Error("job not queued, queue full, job dropped",
			"transcript_id", job.Transcript.ID,
			"queue_size", p.config.QueueSize,
		)
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to finish. It is safe
// to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	p.wg.Wait()

	s := p.Stats()
	p.logger.Debug("worker pool stopped",
		"enqueued", s.Enqueued,
		"dropped", s.Dropped,
		"stored", s.Stored,
		"duplicates", s.Duplicates,
		"failed", s.Failed,
		"published", s.Published,
	)
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Enqueued:   p.enqueued.Load(),
		Dropped:    p.dropped.Load(),
		Stored:     p.stored.Load(),
		Duplicates: p.duplicates.Load(),
		Failed:     p.failed.Load(),
		Published:  p.published.Load(),
	}
}

func (p *Pool) run(id uint) {
	defer p.wg.Done()
	for job := range p.queue {
		p.process(id, job)
	}
}

func (p *Pool) process(workerID uint, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	t := job.Transcript
	log := p.logger.With("worker_id", workerID, "transcript_id", t.ID)

	isNew, err := p.config.Driver.Put(ctx, t)
	switch {
	case err != nil:
		p.failed.Add(1)
		log.Error("storing transcript failed", "error", err)
		return
	case !isNew:
		p.duplicates.Add(1)
		log.Debug("transcript already stored")
		return
	}

	p.stored.Add(1)
	log.Info("transcript stored",
		"provider", t.Provider,
		"model", t.Model,
		"steps", t.Steps,
		"tool_calls", len(t.ToolCalls),
	)

	if p.config.Publisher == nil {
		return
	}

	event := eventstream.NewTurnCompletedEvent(t, job.Path, time.Now())
	if err := p.config.Publisher.PublishTurn(ctx, event); err != nil {
		log.Warn("publishing turn event failed", "event_id", event.EventID, "error", err)
		return
	}
	p.published.Add(1)
	log.Debug("turn event published", "event_id", event.EventID)
}
