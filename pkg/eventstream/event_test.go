package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/uistream/pkg/eventstream"
	"github.com/papercomputeco/uistream/pkg/storage"
)

var _ = Describe("Event", func() {
	var (
		now        time.Time
		transcript *storage.Transcript
	)

	BeforeEach(func() {
		now = time.Unix(1735689600, 0).UTC()
		transcript = &storage.Transcript{
			ID:           "msg-1",
			Provider:     "openrouter",
			Model:        "qwen/qwen3-235b-a22b-2507",
			StartedAt:    now.Add(-2 * time.Second),
			CompletedAt:  now,
			Steps:        2,
			ToolCalls:    []storage.ToolCallRecord{{ID: "call_1", Name: "add", Status: "success"}},
			FinishReason: "stop",
		}
	})

	It("derives request metadata from the transcript", func() {
		event := eventstream.NewTurnCompletedEvent(transcript, "/chat", now)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeTurnCompleted))
		Expect(event.EventID).To(HavePrefix("evt_"))
		Expect(event.Source).To(Equal(eventstream.EventSource{Provider: "openrouter", Model: "qwen/qwen3-235b-a22b-2507"}))
		Expect(event.RequestMeta.DurationMs).To(Equal(int64(2000)))
		Expect(event.RequestMeta.Steps).To(Equal(2))
		Expect(event.RequestMeta.ToolCalls).To(Equal(1))
		Expect(event.RequestMeta.Failed).To(BeFalse())
	})

	It("marks failed turns", func() {
		transcript.Error = "upstream closed"
		event := eventstream.NewTurnCompletedEvent(transcript, "/chat", now)
		Expect(event.RequestMeta.Failed).To(BeTrue())
	})

	It("marshals with expected top-level keys", func() {
		payload, err := json.Marshal(eventstream.NewTurnCompletedEvent(transcript, "/chat", now))
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())
		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("request_meta"))
		Expect(got).To(HaveKey("transcript"))
	})

})

var _ = Describe("Validate", func() {
	It("rejects nil events", func() {
		Expect(eventstream.Validate(nil)).To(MatchError(eventstream.ErrNilTurnEvent))
	})

	It("requires a transcript with an id", func() {
		Expect(eventstream.Validate(&eventstream.TurnCompletedEvent{})).To(MatchError(eventstream.ErrMissingTranscript))
		Expect(eventstream.Validate(&eventstream.TurnCompletedEvent{Transcript: &storage.Transcript{}})).
			To(MatchError(eventstream.ErrMissingTranscript))
	})

	It("accepts events built from a transcript", func() {
		event := eventstream.NewTurnCompletedEvent(&storage.Transcript{ID: "msg-1"}, "/chat", time.Now())
		Expect(eventstream.Validate(event)).To(Succeed())
	})
})
