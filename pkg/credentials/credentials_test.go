package credentials_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/uistream/pkg/credentials"
)

var _ = Describe("Manager", func() {
	var (
		dir string
		mgr *credentials.Manager
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()

		var err error
		mgr, err = credentials.NewManager(dir)
		Expect(err).NotTo(HaveOccurred())
	})

	file := func() string { return filepath.Join(dir, "credentials.toml") }

	storedKey := func(provider string) string {
		key, err := mgr.GetKey(provider)
		Expect(err).NotTo(HaveOccurred())
		return key
	}

	It("targets credentials.toml in the resolved directory", func() {
		Expect(mgr.GetTarget()).To(Equal(file()))
	})

	Describe("Load", func() {
		It("returns empty credentials without a file", func() {
			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Providers).To(BeEmpty())
		})

		It("reads a hand-written file", func() {
			Expect(os.WriteFile(file(), []byte(`version = 0

[providers.openai]
api_key = "sk-test-key"
base_url = "http://localhost:8080/v1"
`), 0o600)).To(Succeed())

			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Providers).To(HaveKeyWithValue("openai", credentials.ProviderCredential{
				APIKey:  "sk-test-key",
				BaseURL: "http://localhost:8080/v1",
			}))
		})

		It("fails on malformed TOML", func() {
			Expect(os.WriteFile(file(), []byte("not valid [[["), 0o600)).To(Succeed())

			creds, err := mgr.Load()
			Expect(err).To(HaveOccurred())
			Expect(creds).To(BeNil())
		})
	})

	Describe("Save", func() {
		It("writes a file only the owner can read", func() {
			Expect(mgr.Save(&credentials.Credentials{
				Providers: map[string]credentials.ProviderCredential{"openai": {APIKey: "sk-test"}},
			})).To(Succeed())

			info, err := os.Stat(file())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("rejects nil", func() {
			Expect(mgr.Save(nil)).NotTo(Succeed())
		})

		It("leaves no temporary files behind", func() {
			Expect(mgr.SetKey("openai", "sk-test")).To(Succeed())
			Expect(mgr.SetKey("openrouter", "sk-or")).To(Succeed())

			entries, err := os.ReadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Name()).To(Equal("credentials.toml"))
		})
	})

	Describe("keys", func() {
		It("stores, replaces and removes a key per provider", func() {
			Expect(mgr.SetKey("openai", "sk-1")).To(Succeed())
			Expect(mgr.SetKey("openrouter", "sk-or")).To(Succeed())
			Expect(mgr.SetKey("openai", "sk-2")).To(Succeed())

			Expect(storedKey("openai")).To(Equal("sk-2"))
			Expect(storedKey("openrouter")).To(Equal("sk-or"))

			Expect(mgr.RemoveKey("openai")).To(Succeed())
			Expect(storedKey("openai")).To(BeEmpty())
			Expect(storedKey("openrouter")).To(Equal("sk-or"))
		})

		It("returns an empty key for unknown providers", func() {
			Expect(storedKey("nonexistent")).To(BeEmpty())
		})

		It("treats removing an unknown provider as a no-op", func() {
			Expect(mgr.RemoveKey("nonexistent")).To(Succeed())
		})

		It("drops the base URL when only the key is replaced", func() {
			Expect(mgr.Set("openai", credentials.ProviderCredential{APIKey: "a", BaseURL: "http://x/v1"})).To(Succeed())
			Expect(mgr.SetKey("openai", "b")).To(Succeed())

			got, _, err := mgr.Get("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(credentials.ProviderCredential{APIKey: "b"}))
		})
	})

	Describe("Get", func() {
		It("round-trips a base URL", func() {
			cred := credentials.ProviderCredential{APIKey: "sk-local", BaseURL: "http://localhost:8080/v1"}
			Expect(mgr.Set("openai", cred)).To(Succeed())

			got, ok, err := mgr.Get("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(cred))
		})

		It("reports a missing provider", func() {
			_, ok, err := mgr.Get("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ListProviders", func() {
		It("is empty without credentials", func() {
			Expect(mgr.ListProviders()).To(BeEmpty())
		})

		It("is sorted", func() {
			Expect(mgr.SetKey("openrouter", "sk-2")).To(Succeed())
			Expect(mgr.SetKey("openai", "sk-1")).To(Succeed())

			Expect(mgr.ListProviders()).To(Equal([]string{"openai", "openrouter"}))
		})
	})
})

var _ = DescribeTable("EnvVarForProvider",
	func(provider, expected string) {
		Expect(credentials.EnvVarForProvider(provider)).To(Equal(expected))
	},
	Entry("openai", "openai", "OPENAI_API_KEY"),
	Entry("openrouter", "openrouter", "OPENROUTER_API_KEY"),
	Entry("unknown", "ollama", ""),
)

var _ = Describe("SupportedProviders", func() {
	It("lists the gateway before the primary provider", func() {
		Expect(credentials.SupportedProviders()).To(Equal([]string{"openrouter", "openai"}))
	})

	It("knows which providers are supported", func() {
		Expect(credentials.IsSupportedProvider("openai")).To(BeTrue())
		Expect(credentials.IsSupportedProvider("ollama")).To(BeFalse())
	})

	It("marks only openrouter as a gateway", func() {
		Expect(credentials.IsGateway("openrouter")).To(BeTrue())
		Expect(credentials.IsGateway("openai")).To(BeFalse())
		Expect(credentials.IsGateway("ollama")).To(BeFalse())
	})
})

var _ = DescribeTable("MaskedKey",
	func(key, expected string) {
		Expect(credentials.ProviderCredential{APIKey: key}.MaskedKey()).To(Equal(expected))
	},
	Entry("empty", "", ""),
	Entry("short keys are fully hidden", "sk-12345", "********"),
	Entry("openai style", "sk-proj-abcdefghijklmnop", "sk-proj-…mnop"),
	Entry("openrouter style", "sk-or-v1-0123456789abcdef", "sk-or-v1-…cdef"),
	Entry("no dashes", "abcdefghijklmnop", "abc…mnop"),
)
