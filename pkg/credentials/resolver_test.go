package credentials_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/uistream/pkg/credentials"
)

type fakeStore map[string]credentials.ProviderCredential

func (f fakeStore) Get(provider string) (credentials.ProviderCredential, bool, error) {
	c, ok := f[provider]
	return c, ok, nil
}

type failingStore struct{}

func (failingStore) Get(string) (credentials.ProviderCredential, bool, error) {
	return credentials.ProviderCredential{}, false, errors.New("permission denied")
}

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

var _ = Describe("Resolver", func() {
	It("prefers the gateway key", func() {
		r := &credentials.Resolver{Getenv: envOf(map[string]string{
			"OPENROUTER_API_KEY": "or-key",
			"OPENAI_API_KEY":     "oa-key",
		})}

		resolved, err := r.Resolve()
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved).To(Equal(&credentials.Resolved{
			Provider: "openrouter",
			APIKey:   "or-key",
			BaseURL:  "https://openrouter.ai/api/v1",
			Model:    "qwen/qwen3-235b-a22b-2507",
			Gateway:  true,
		}))
	})

	It("falls back to the primary key", func() {
		r := &credentials.Resolver{Getenv: envOf(map[string]string{
			"OPENAI_API_KEY":  "oa-key",
			"OPENAI_BASE_URL": "http://localhost:8080/v1",
		})}

		resolved, err := r.Resolve()
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved.Provider).To(Equal("openai"))
		Expect(resolved.Model).To(Equal("gpt-4o"))
		Expect(resolved.BaseURL).To(Equal("http://localhost:8080/v1"))
		Expect(resolved.Gateway).To(BeFalse())
	})

	It("lets MODEL_ID override the configured model", func() {
		r := &credentials.Resolver{
			Getenv: envOf(map[string]string{"OPENAI_API_KEY": "k", "MODEL_ID": "gpt-4.1"}),
			Model:  "gpt-4o-mini",
		}

		resolved, err := r.Resolve()
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved.Model).To(Equal("gpt-4.1"))
	})

	It("uses the configured model when MODEL_ID is unset", func() {
		r := &credentials.Resolver{
			Getenv: envOf(map[string]string{"OPENAI_API_KEY": "k"}),
			Model:  "gpt-4o-mini",
		}

		resolved, err := r.Resolve()
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved.Model).To(Equal("gpt-4o-mini"))
	})

	It("consults stored keys when the environment is empty", func() {
		r := &credentials.Resolver{
			Getenv: envOf(nil),
			Store:  fakeStore{"openai": {APIKey: "stored"}},
		}

		resolved, err := r.Resolve()
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved.Provider).To(Equal("openai"))
		Expect(resolved.APIKey).To(Equal("stored"))
		Expect(resolved.BaseURL).To(BeEmpty())
	})

	It("uses a stored base URL unless OPENAI_BASE_URL is set", func() {
		store := fakeStore{"openai": {APIKey: "stored", BaseURL: "http://localhost:8080/v1"}}

		r := &credentials.Resolver{Getenv: envOf(nil), Store: store}
		resolved, err := r.Resolve()
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved.BaseURL).To(Equal("http://localhost:8080/v1"))

		r.Getenv = envOf(map[string]string{"OPENAI_BASE_URL": "http://proxy/v1"})
		resolved, err = r.Resolve()
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved.BaseURL).To(Equal("http://proxy/v1"))
	})

	It("keeps a stored base URL when the key comes from the environment", func() {
		r := &credentials.Resolver{
			Getenv: envOf(map[string]string{"OPENAI_API_KEY": "env"}),
			Store:  fakeStore{"openai": {APIKey: "stored", BaseURL: "http://localhost:8080/v1"}},
		}

		resolved, err := r.Resolve()
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved.APIKey).To(Equal("env"))
		Expect(resolved.BaseURL).To(Equal("http://localhost:8080/v1"))
	})

	It("never applies a base URL to the gateway", func() {
		r := &credentials.Resolver{
			Getenv: envOf(map[string]string{"OPENAI_BASE_URL": "http://proxy/v1"}),
			Store:  fakeStore{"openrouter": {APIKey: "or", BaseURL: "http://elsewhere/v1"}},
		}

		resolved, err := r.Resolve()
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved.BaseURL).To(Equal("https://openrouter.ai/api/v1"))
	})

	It("wraps store failures", func() {
		r := &credentials.Resolver{Getenv: envOf(nil), Store: failingStore{}}

		_, err := r.Resolve()
		Expect(err).To(MatchError(ContainSubstring("permission denied")))
		Expect(err).NotTo(MatchError(credentials.ErrNotConfigured))
	})

	It("returns ErrNotConfigured when no key exists", func() {
		r := &credentials.Resolver{Getenv: envOf(nil), Store: fakeStore{}}

		_, err := r.Resolve()
		Expect(err).To(MatchError(credentials.ErrNotConfigured))
		Expect(r.Configured()).To(BeFalse())
	})
})
