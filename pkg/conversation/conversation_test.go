package conversation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/uistream/pkg/conversation"
	"github.com/papercomputeco/uistream/pkg/llm"
)

var _ = Describe("Conversation", func() {
	It("starts with the system prompt", func() {
		c := conversation.New("You are helpful.")
		Expect(c.Len()).To(Equal(1))
		Expect(c.Messages()[0]).To(Equal(llm.Message{Role: llm.RoleSystem, Content: "You are helpful."}))
		Expect(c.HasUserTurn()).To(BeFalse())
	})

	It("starts empty without a system prompt", func() {
		Expect(conversation.New("").Len()).To(BeZero())
	})

	It("preserves insertion order across a tool round", func() {
		c := conversation.New("sys")
		c.AddUserMessage("weather in Paris?")
		call := llm.ToolCall{ID: "call_1", Name: "getWeather", Arguments: `{"city":"Paris"}`}
		c.AddAssistantMessage("", call)
		c.AddToolResponse("call_1", `{"temperature":21}`)

		msgs := c.Messages()
		Expect(msgs).To(HaveLen(4))
		Expect(msgs[1].Role).To(Equal(llm.RoleUser))
		Expect(msgs[2].Role).To(Equal(llm.RoleAssistant))
		Expect(msgs[2].ToolCalls).To(Equal([]llm.ToolCall{call}))
		Expect(msgs[3]).To(Equal(llm.Message{
			Role:       llm.RoleTool,
			Content:    `{"temperature":21}`,
			ToolCallID: "call_1",
		}))
		Expect(c.HasUserTurn()).To(BeTrue())
	})

	It("returns a copy from Messages", func() {
		c := conversation.New("sys")
		msgs := c.Messages()
		msgs[0].Content = "mutated"

		Expect(c.Messages()[0].Content).To(Equal("sys"))
	})
})
