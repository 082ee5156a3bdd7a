package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/uistream/pkg/eventstream"
	"github.com/papercomputeco/uistream/pkg/storage"
	"github.com/papercomputeco/uistream/pkg/storage/inmemory"
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.TurnCompletedEvent
	err    error
}

func (r *recordingPublisher) PublishTurn(_ context.Context, event *eventstream.TurnCompletedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

// failingDriver fails every Put.
type failingDriver struct {
	*inmemory.Driver
}

func (failingDriver) Put(context.Context, *storage.Transcript) (bool, error) {
	return false, errors.New("disk full")
}

func transcript(id string) *storage.Transcript {
	now := time.Now()
	return &storage.Transcript{
		ID:          id,
		Provider:    "openai",
		Model:       "gpt-4o",
		StartedAt:   now.Add(-time.Second),
		CompletedAt: now,
		Text:        "hi",
		Steps:       1,
	}
}

var _ = Describe("Worker Pool", func() {
	var (
		driver    *inmemory.Driver
		publisher *recordingPublisher
		ctx       context.Context
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		publisher = &recordingPublisher{}
		ctx = context.Background()
	})

	newPool := func(c *Config) *Pool {
		wp, err := NewPool(c)
		Expect(err).NotTo(HaveOccurred())
		return wp
	}

	It("requires a driver", func() {
		_, err := NewPool(&Config{})
		Expect(err).To(HaveOccurred())
	})

	It("applies defaults", func() {
		wp := newPool(&Config{Driver: driver})
		defer wp.Close()
		Expect(wp.config.NumWorkers).To(Equal(defaultNumWorkers))
		Expect(wp.config.QueueSize).To(Equal(defaultJobQueueSize))
		Expect(wp.config.JobTimeout).To(Equal(defaultJobTimeout))
	})

	It("stores enqueued transcripts and publishes one event each", func() {
		wp := newPool(&Config{Driver: driver, Publisher: publisher})

		for i := range 5 {
			Expect(wp.Enqueue(Job{Path: "/chat", Transcript: transcript(fmt.Sprintf("msg-%d", i))})).To(BeTrue())
		}
		wp.Close()

		stored, err := driver.List(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(HaveLen(5))

		Expect(publisher.events).To(HaveLen(5))
		for _, ev := range publisher.events {
			Expect(ev.EventType).To(Equal(eventstream.EventTypeTurnCompleted))
			Expect(ev.RequestMeta.Path).To(Equal("/chat"))
		}
		Expect(wp.Stats()).To(Equal(Stats{Enqueued: 5, Stored: 5, Published: 5}))
	})

	It("does not publish duplicates", func() {
		wp := newPool(&Config{Driver: driver, Publisher: publisher, NumWorkers: 1})

		Expect(wp.Enqueue(Job{Transcript: transcript("msg-1")})).To(BeTrue())
		Expect(wp.Enqueue(Job{Transcript: transcript("msg-1")})).To(BeTrue())
		wp.Close()

		Expect(publisher.events).To(HaveLen(1))
		Expect(wp.Stats().Duplicates).To(Equal(int64(1)))
	})

	It("does not publish when storage fails", func() {
		wp := newPool(&Config{Driver: failingDriver{driver}, Publisher: publisher})

		Expect(wp.Enqueue(Job{Transcript: transcript("msg-1")})).To(BeTrue())
		wp.Close()

		Expect(publisher.events).To(BeEmpty())
		Expect(wp.Stats().Failed).To(Equal(int64(1)))
	})

	It("keeps the transcript when publishing fails", func() {
		publisher.err = errors.New("broker down")
		wp := newPool(&Config{Driver: driver, Publisher: publisher})

		Expect(wp.Enqueue(Job{Transcript: transcript("msg-1")})).To(BeTrue())
		wp.Close()

		_, err := driver.Get(ctx, "msg-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(wp.Stats().Stored).To(Equal(int64(1)))
		Expect(wp.Stats().Published).To(BeZero())
	})

	It("works without a publisher", func() {
		wp := newPool(&Config{Driver: driver})
		Expect(wp.Enqueue(Job{Transcript: transcript("msg-1")})).To(BeTrue())
		wp.Close()

		_, err := driver.Get(ctx, "msg-1")
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects jobs without a transcript", func() {
		wp := newPool(&Config{Driver: driver})
		defer wp.Close()
		Expect(wp.Enqueue(Job{})).To(BeFalse())
	})

	It("drops jobs when the queue is full", func() {
		block := make(chan struct{})
		wp := newPool(&Config{Driver: blockingDriver{driver, block}, NumWorkers: 1, QueueSize: 1})

		// One job is picked up by the worker and blocks, one fills the queue.
		Expect(wp.Enqueue(Job{Transcript: transcript("msg-1")})).To(BeTrue())
		Eventually(func() int { return len(wp.queue) }).Should(BeZero())
		Expect(wp.Enqueue(Job{Transcript: transcript("msg-2")})).To(BeTrue())
		Expect(wp.Enqueue(Job{Transcript: transcript("msg-3")})).To(BeFalse())

		close(block)
		wp.Close()
		Expect(wp.Stats().Dropped).To(Equal(int64(1)))
	})

	It("can be closed twice", func() {
		wp := newPool(&Config{Driver: driver})
		wp.Close()
		wp.Close()
	})

	It("refuses jobs after close", func() {
		wp := newPool(&Config{Driver: driver})
		wp.Close()

		Expect(wp.Enqueue(Job{Transcript: transcript("late")})).To(BeFalse())
		Expect(wp.Stats().Dropped).To(Equal(int64(1)))
	})

	It("accepts jobs from many goroutines while closing", func() {
		wp := newPool(&Config{Driver: driver, QueueSize: 1024})

		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				wp.Enqueue(Job{Transcript: transcript(fmt.Sprintf("msg-%d", i))})
			}()
		}
		wp.Close()
		wg.Wait()

		s := wp.Stats()
		Expect(s.Enqueued + s.Dropped).To(Equal(int64(50)))
		Expect(s.Stored).To(Equal(s.Enqueued))
	})
})

// blockingDriver waits for release before storing.
type blockingDriver struct {
	*inmemory.Driver
	release chan struct{}
}

func (b blockingDriver) Put(ctx context.Context, t *storage.Transcript) (bool, error) {
	<-b.release
	return b.Driver.Put(ctx, t)
}
