package llm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/uistream/pkg/llm"
)

var _ = Describe("IsReasoningModel", func() {
	DescribeTable("classifies model ids",
		func(model string, expected bool) {
			Expect(llm.IsReasoningModel(model)).To(Equal(expected))
		},
		Entry("plain chat model", "gpt-4o-mini", false),
		Entry("gateway prefixed chat model", "openai/gpt-4o", false),
		Entry("o-series", "o3-mini", true),
		Entry("bare o-series", "o1", true),
		Entry("gateway prefixed o-series", "openai/o4-mini", true),
		Entry("thinking variant", "anthropic/claude-3.7-sonnet:thinking", true),
		Entry("r1 distill", "deepseek/deepseek-r1", true),
		Entry("prefix lookalike", "o1x", false),
		Entry("upper case", "OpenAI/O3", true),
	)
})

var _ = Describe("Usage", func() {
	It("accumulates counts", func() {
		u := &llm.Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}
		u.Add(&llm.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30})
		Expect(*u).To(Equal(llm.Usage{PromptTokens: 11, CompletionTokens: 22, TotalTokens: 33}))
	})

	It("ignores nil", func() {
		u := &llm.Usage{TotalTokens: 5}
		u.Add(nil)
		Expect(u.TotalTokens).To(Equal(5))
	})
})

var _ = Describe("NewTextMessage", func() {
	It("sets role and content", func() {
		m := llm.NewTextMessage("user", "hi")
		Expect(m.Role).To(Equal("user"))
		Expect(m.Content).To(Equal("hi"))
		Expect(m.ToolCalls).To(BeEmpty())
	})
})
