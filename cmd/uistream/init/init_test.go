package initcmder_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/papercomputeco/uistream/cmd/uistream/init"
	"github.com/papercomputeco/uistream/pkg/config"
)

func execute(args ...string) error {
	cmd := initcmder.NewInitCmd()
	cmd.SetOut(GinkgoWriter)
	cmd.SetErr(GinkgoWriter)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	return cmd.Execute()
}

var _ = Describe("NewInitCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Use).To(Equal("init"))
	})

	It("rejects any arguments", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Args(cmd, []string{})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"extra"})).NotTo(Succeed())
	})

	It("has a --preset flag", func() {
		cmd := initcmder.NewInitCmd()
		f := cmd.Flags().Lookup("preset")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})

var _ = Describe("Init command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir = GinkgoT().TempDir()

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
	})

	It("creates a .uistream directory with a default config.toml", func() {
		Expect(execute()).To(Succeed())

		info, err := os.Stat(filepath.Join(tmpDir, ".uistream"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())

		cfg := loadConfig(tmpDir)
		Expect(cfg.Version).To(Equal(config.CurrentV))
		Expect(cfg.Server.Listen).To(Equal(":8000"))
		Expect(cfg.API.Listen).To(Equal(":8081"))
		Expect(cfg.Agent.MaxFollowUps).To(Equal(uint(3)))
	})

	It("does not overwrite existing contents when already initialized", func() {
		dir := filepath.Join(tmpDir, ".uistream")
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())

		session := filepath.Join(dir, "session.json")
		Expect(os.WriteFile(session, []byte(`{"id":"abc"}`), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[llm]\nmodel = \"gpt-4o\"\n"), 0o644)).To(Succeed())

		Expect(execute()).To(Succeed())

		data, err := os.ReadFile(session)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{"id":"abc"}`))
		Expect(loadConfig(tmpDir).LLM.Model).To(Equal("gpt-4o"))
	})

	Describe("--preset with named presets", func() {
		It("writes the openrouter preset", func() {
			Expect(execute("--preset", "openrouter")).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.LLM.Model).To(Equal("qwen/qwen3-235b-a22b-2507"))
			Expect(cfg.Server.Listen).To(Equal(":8000"))
		})

		It("writes the local preset", func() {
			Expect(execute("--preset", "local")).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.LLM.RequestTimeout).To(Equal("10m"))
			Expect(cfg.Tools.WeatherLatency).To(Equal("0s"))
		})

		It("rejects unknown preset names without creating the directory", func() {
			err := execute("--preset", "anthropic")
			Expect(err).To(MatchError(ContainSubstring("unknown preset")))

			_, statErr := os.Stat(filepath.Join(tmpDir, ".uistream"))
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})

		It("overwrites config.toml on re-init", func() {
			Expect(execute("--preset", "openai")).To(Succeed())
			Expect(loadConfig(tmpDir).LLM.Model).To(Equal("gpt-4o"))

			Expect(execute("--preset", "openrouter")).To(Succeed())
			Expect(loadConfig(tmpDir).LLM.Model).To(Equal("qwen/qwen3-235b-a22b-2507"))
		})
	})

	Describe("--preset with remote URL", func() {
		It("fetches and writes remote config.toml", func() {
			remoteCfg := `version = 0

[server]
listen = ":9000"

[llm]
model = "openai/gpt-4o-mini"
`
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, remoteCfg)
			}))
			DeferCleanup(server.Close)

			Expect(execute("--preset", server.URL)).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Server.Listen).To(Equal(":9000"))
			Expect(cfg.LLM.Model).To(Equal("openai/gpt-4o-mini"))
		})

		It("returns error for non-200 HTTP response", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			DeferCleanup(server.Close)

			Expect(execute("--preset", server.URL)).To(MatchError(ContainSubstring("HTTP 404")))
		})

		It("returns error for invalid TOML from URL", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "this is not valid toml [[[")
			}))
			DeferCleanup(server.Close)

			Expect(execute("--preset", server.URL)).To(MatchError(ContainSubstring("parsing")))
		})

		It("validates remote values before creating anything", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "[stream]\npace_delay = \"slowly\"\n")
			}))
			DeferCleanup(server.Close)

			Expect(execute("--preset", server.URL)).To(MatchError(ContainSubstring("stream.pace_delay")))
			_, err := os.Stat(filepath.Join(tmpDir, ".uistream"))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("returns error for unreachable URL", func() {
			Expect(execute("--preset", "http://127.0.0.1:1")).To(MatchError(ContainSubstring("fetching remote config")))
		})
	})
})

// loadConfig reads and parses the config.toml from the .uistream directory
// within baseDir.
func loadConfig(baseDir string) *config.Config {
	data, err := os.ReadFile(filepath.Join(baseDir, ".uistream", "config.toml"))
	ExpectWithOffset(1, err).NotTo(HaveOccurred())

	cfg := &config.Config{}
	ExpectWithOffset(1, toml.Unmarshal(data, cfg)).To(Succeed())
	return cfg
}
