package tools_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/uistream/pkg/tools"
)

// stubTool is a minimal tools.Tool for registry and executor tests.
type stubTool struct {
	name string
	call func(ctx context.Context, args map[string]any) (any, error)
}

func (s stubTool) Spec() tools.Spec {
	return tools.Spec{Name: s.name, Description: "stub " + s.name, Parameters: map[string]any{"type": "object"}}
}

func (s stubTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if s.call == nil {
		return "ok", nil
	}
	return s.call(ctx, args)
}

var _ = Describe("Registry", func() {
	It("sorts specs and names", func() {
		reg, err := tools.NewRegistry(stubTool{name: "zeta"}, stubTool{name: "alpha"})
		Expect(err).NotTo(HaveOccurred())

		Expect(reg.Names()).To(Equal([]string{"alpha", "zeta"}))
		Expect(reg.Len()).To(Equal(2))

		specs := reg.Specs()
		Expect(specs).To(HaveLen(2))
		Expect(specs[0].Name).To(Equal("alpha"))
	})

	It("rejects duplicate names", func() {
		_, err := tools.NewRegistry(stubTool{name: "add"}, stubTool{name: "add"})
		Expect(err).To(MatchError(ContainSubstring("duplicate")))
	})

	It("rejects empty names", func() {
		_, err := tools.NewRegistry(stubTool{})
		Expect(err).To(HaveOccurred())
	})

	It("looks tools up by name", func() {
		reg, err := tools.NewRegistry(stubTool{name: "add"})
		Expect(err).NotTo(HaveOccurred())

		_, ok := reg.Lookup("add")
		Expect(ok).To(BeTrue())
		_, ok = reg.Lookup("missing")
		Expect(ok).To(BeFalse())
	})

	It("returns a copy of the names", func() {
		reg, err := tools.NewRegistry(stubTool{name: "add"})
		Expect(err).NotTo(HaveOccurred())

		names := reg.Names()
		names[0] = "mutated"
		Expect(reg.Names()).To(Equal([]string{"add"}))
	})
})
