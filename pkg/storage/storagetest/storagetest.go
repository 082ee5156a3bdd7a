// Package storagetest holds the behaviour every storage.Driver must share.
// Driver test suites call ItBehavesLikeADriver from a Describe block.
package storagetest

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/uistream/pkg/llm"
	"github.com/papercomputeco/uistream/pkg/storage"
)

// NewTranscript returns a populated transcript started at the given time.
func NewTranscript(id string, started time.Time) *storage.Transcript {
	return &storage.Transcript{
		ID:          id,
		Provider:    "openrouter",
		Model:       "qwen/qwen3-235b-a22b-2507",
		StartedAt:   started.UTC(),
		CompletedAt: started.Add(1500 * time.Millisecond).UTC(),
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleSystem, "be helpful"),
			llm.NewTextMessage(llm.RoleUser, "weather in Paris?"),
			{
				Role: llm.RoleAssistant,
				ToolCalls: []llm.ToolCall{
					{ID: "call_1", Name: "getWeather", Arguments: `{"city":"Paris"}`},
				},
			},
			{Role: llm.RoleTool, ToolCallID: "call_1", Content: `{"city":"Paris"}`},
			llm.NewTextMessage(llm.RoleAssistant, "It is sunny."),
		},
		Text:  "It is sunny.",
		Steps: 2,
		ToolCalls: []storage.ToolCallRecord{{
			ID:     "call_1",
			Name:   "getWeather",
			Input:  map[string]any{"city": "Paris"},
			Status: "success",
			Output: map[string]any{"status": "success", "text": "Paris: sunny"},
		}},
		FinishReason: "stop",
		Usage:        &llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

// ItBehavesLikeADriver registers the shared driver specs. newDriver is
// called before each spec; the driver is closed after it.
func ItBehavesLikeADriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
		base   time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		base = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		driver = newDriver()
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	It("round trips a transcript", func() {
		want := NewTranscript("msg-1", base)

		inserted, err := driver.Put(ctx, want)
		Expect(err).NotTo(HaveOccurred())
		Expect(inserted).To(BeTrue())

		got, err := driver.Get(ctx, "msg-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(want.ID))
		Expect(got.Provider).To(Equal(want.Provider))
		Expect(got.StartedAt.Equal(want.StartedAt)).To(BeTrue())
		Expect(got.Duration()).To(Equal(1500 * time.Millisecond))
		Expect(got.Messages).To(Equal(want.Messages))
		Expect(got.ToolCalls).To(HaveLen(1))
		Expect(got.ToolCalls[0].Input).To(HaveKeyWithValue("city", "Paris"))
		Expect(got.Usage).To(Equal(want.Usage))
		Expect(got.Steps).To(Equal(2))
		Expect(got.FinishReason).To(Equal("stop"))
	})

	It("keeps the first write for a duplicate id", func() {
		first := NewTranscript("msg-dup", base)
		_, err := driver.Put(ctx, first)
		Expect(err).NotTo(HaveOccurred())

		second := NewTranscript("msg-dup", base)
		second.Text = "changed"
		inserted, err := driver.Put(ctx, second)
		Expect(err).NotTo(HaveOccurred())
		Expect(inserted).To(BeFalse())

		got, err := driver.Get(ctx, "msg-dup")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Text).To(Equal("It is sunny."))
	})

	It("stores transcripts without usage or tool calls", func() {
		t := NewTranscript("msg-bare", base)
		t.Usage = nil
		t.ToolCalls = nil
		t.Error = "upstream closed"

		_, err := driver.Put(ctx, t)
		Expect(err).NotTo(HaveOccurred())

		got, err := driver.Get(ctx, "msg-bare")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Usage).To(BeNil())
		Expect(got.ToolCalls).To(BeEmpty())
		Expect(got.Error).To(Equal("upstream closed"))
	})

	It("rejects transcripts without an id", func() {
		_, err := driver.Put(ctx, &storage.Transcript{})
		Expect(err).To(HaveOccurred())

		_, err = driver.Put(ctx, nil)
		Expect(err).To(HaveOccurred())
	})

	It("returns NotFoundError for unknown ids", func() {
		_, err := driver.Get(ctx, "msg-missing")
		Expect(err).To(MatchError(storage.NotFoundError{ID: "msg-missing"}))
	})

	It("lists newest first up to the limit", func() {
		for i := range 5 {
			_, err := driver.Put(ctx, NewTranscript(fmt.Sprintf("msg-%d", i), base.Add(time.Duration(i)*time.Minute)))
			Expect(err).NotTo(HaveOccurred())
		}

		got, err := driver.List(ctx, 3)
		Expect(err).NotTo(HaveOccurred())

		ids := make([]string, 0, len(got))
		for _, t := range got {
			ids = append(ids, t.ID)
		}
		Expect(ids).To(Equal([]string{"msg-4", "msg-3", "msg-2"}))
	})

	It("applies the default limit", func() {
		_, err := driver.Put(ctx, NewTranscript("msg-only", base))
		Expect(err).NotTo(HaveOccurred())

		got, err := driver.List(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))
	})
}
