package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/uistream/pkg/config"
)

var _ = Describe("Configer", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	writeConfig := func(data string) {
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())
	}

	load := func() *config.Config {
		c, err := config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		cfg, err := c.Load()
		Expect(err).NotTo(HaveOccurred())
		return cfg
	}

	Describe("Load", func() {
		It("returns default config when no config file exists", func() {
			Expect(load()).To(Equal(config.NewDefaultConfig()))
		})

		It("loads a valid config file", func() {
			writeConfig(`version = 0

[server]
listen = ":9000"

[llm]
model = "gpt-4o-mini"

[agent]
max_follow_ups = 5
temperature = "0.2"
`)

			cfg := load()
			Expect(cfg.Server.Listen).To(Equal(":9000"))
			Expect(cfg.LLM.Model).To(Equal("gpt-4o-mini"))
			Expect(cfg.Agent.MaxFollowUps).To(Equal(uint(5)))
			Expect(cfg.Agent.Temperature).To(Equal("0.2"))
		})

		It("fills in defaults for unset fields in a partial config", func() {
			writeConfig(`[storage]
sqlite_path = "/tmp/transcripts.db"
`)

			cfg := load()
			defaults := config.NewDefaultConfig()
			Expect(cfg.Storage.SQLitePath).To(Equal("/tmp/transcripts.db"))
			Expect(cfg.Server).To(Equal(defaults.Server))
			Expect(cfg.Agent.MaxFollowUps).To(Equal(defaults.Agent.MaxFollowUps))
			Expect(cfg.Stream.PaceDelay).To(Equal(defaults.Stream.PaceDelay))
			Expect(cfg.Tools).To(Equal(defaults.Tools))
			Expect(cfg.EventStream.KafkaTopic).To(Equal(defaults.EventStream.KafkaTopic))
			Expect(cfg.Client).To(Equal(defaults.Client))
		})

		It("does not overwrite explicitly set values", func() {
			writeConfig(`[stream]
pace_delay = "0s"

[tools]
timeout = "5s"
weather_latency = "250ms"

[client]
chat_target = "http://remote:9000"
`)

			cfg := load()
			Expect(cfg.Stream.PaceDelay).To(Equal("0s"))
			Expect(cfg.Tools.Timeout).To(Equal("5s"))
			Expect(cfg.Tools.WeatherLatency).To(Equal("250ms"))
			Expect(cfg.Client.ChatTarget).To(Equal("http://remote:9000"))
		})

		It("returns error for malformed TOML", func() {
			writeConfig("this is not [valid toml")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			_, err = c.Load()
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid values in the file", func() {
			writeConfig("[tools]\ntimeout = \"soon\"\n")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			_, err = c.Load()
			Expect(err).To(MatchError(ContainSubstring("tools.timeout")))
			Expect(err).To(MatchError(ContainSubstring("config.toml")))
		})

		It("returns error for unsupported config version", func() {
			writeConfig("version = 99\n")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			_, err = c.Load()
			Expect(err).To(MatchError(ContainSubstring("unsupported config version 99")))
		})
	})

	Describe("Save", func() {
		It("persists config to disk with private permissions", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.LLM.Model = "gpt-4o"
			Expect(c.Save(cfg)).To(Succeed())

			info, err := os.Stat(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))

			Expect(load().LLM.Model).To(Equal("gpt-4o"))
		})

		It("reports its path", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Path()).To(Equal(filepath.Join(tmpDir, "config.toml")))
		})

		It("returns error for nil config", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Save(nil)).To(HaveOccurred())
		})

		It("round-trips every field", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := &config.Config{
				Version:     config.CurrentV,
				Server:      config.ServerConfig{Listen: ":1", AllowOrigins: "https://a.example,https://b.example"},
				API:         config.APIConfig{Listen: ":2"},
				Agent:       config.AgentConfig{SystemPrompt: "be brief", MaxFollowUps: 7, Temperature: "0"},
				LLM:         config.LLMConfig{Model: "m", RequestTimeout: "30s"},
				Stream:      config.StreamConfig{PaceDelay: "1ms"},
				Tools:       config.ToolsConfig{Timeout: "3s", WeatherLatency: "2s"},
				Storage:     config.StorageConfig{SQLitePath: "/tmp/x.db", PostgresDSN: "postgres://localhost/x"},
				EventStream: config.EventStreamConfig{KafkaBrokers: "k1:9092,k2:9092", KafkaTopic: "t"},
				Client:      config.ClientConfig{ChatTarget: "http://c", APITarget: "http://a"},
			}
			Expect(c.Save(cfg)).To(Succeed())
			Expect(load()).To(Equal(cfg))
		})
	})

	Describe("Set", func() {
		var c *config.Configer

		BeforeEach(func() {
			var err error
			c, err = config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("sets a string config key", func() {
			Expect(c.Set("llm.model", "gpt-4o")).To(Succeed())

			val, err := c.Get("llm.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("gpt-4o"))
		})

		It("sets a uint config key", func() {
			Expect(c.Set("agent.max_follow_ups", "5")).To(Succeed())

			val, err := c.Get("agent.max_follow_ups")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("5"))
		})

		It("sets a duration config key", func() {
			Expect(c.Set("stream.pace_delay", "25ms")).To(Succeed())
			Expect(load().Stream.PaceDelay).To(Equal("25ms"))
		})

		DescribeTable("rejects invalid values",
			func(key, value string) {
				Expect(c.Set(key, value)).To(MatchError(ContainSubstring(key)))
			},
			Entry("uint", "agent.max_follow_ups", "many"),
			Entry("negative uint", "agent.max_follow_ups", "-1"),
			Entry("float", "agent.temperature", "warm"),
			Entry("duration", "tools.timeout", "soon"),
			Entry("negative duration", "stream.pace_delay", "-5ms"),
		)

		It("returns error for unknown key", func() {
			Expect(c.Set("proxy.upstream", "x")).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("preserves existing values when setting a new key", func() {
			Expect(c.Set("llm.model", "gpt-4o")).To(Succeed())
			Expect(c.Set("storage.sqlite_path", "/tmp/t.db")).To(Succeed())

			cfg := load()
			Expect(cfg.LLM.Model).To(Equal("gpt-4o"))
			Expect(cfg.Storage.SQLitePath).To(Equal("/tmp/t.db"))
		})
	})

	Describe("Unset", func() {
		It("restores the default", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Set("stream.pace_delay", "0s")).To(Succeed())

			Expect(c.Unset("stream.pace_delay")).To(Succeed())
			Expect(load().Stream.PaceDelay).To(Equal("10ms"))
		})

		It("clears keys without a default", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Set("agent.temperature", "0.7")).To(Succeed())

			Expect(c.Unset("agent.temperature")).To(Succeed())
			Expect(load().Agent.Temperature).To(BeEmpty())
		})

		It("returns error for unknown key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Unset("nope")).To(MatchError(ContainSubstring("unknown config key")))
		})
	})

	Describe("Get", func() {
		It("returns default value when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			val, err := c.Get("server.listen")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal(":8000"))
		})

		It("returns empty string for key with no default", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			val, err := c.Get("storage.postgres_dsn")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(BeEmpty())
		})

		It("returns error for unknown key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.Get("nope")
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("ValidConfigKeys", func() {
	It("lists every key once, in section order", func() {
		keys := config.ValidConfigKeys()
		Expect(keys).To(HaveLen(17))
		Expect(keys[0]).To(Equal("server.listen"))
		Expect(keys[len(keys)-1]).To(Equal("client.api_target"))

		seen := map[string]bool{}
		for _, k := range keys {
			Expect(seen).NotTo(HaveKey(k))
			seen[k] = true
			Expect(config.IsValidConfigKey(k)).To(BeTrue())
		}
	})

	It("rejects unknown keys", func() {
		Expect(config.IsValidConfigKey("proxy.listen")).To(BeFalse())
		Expect(config.IsValidConfigKey("listen")).To(BeFalse())
	})
})

var _ = Describe("Value", func() {
	It("reads a dotted key", func() {
		v, ok := config.NewDefaultConfig().Value("api.listen")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(":8081"))
	})

	It("reports unknown keys", func() {
		_, ok := config.NewDefaultConfig().Value("api.port")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Validate", func() {
	It("accepts the defaults", func() {
		Expect(config.NewDefaultConfig().Validate()).To(Succeed())
	})

	It("does not modify the config", func() {
		cfg := config.NewDefaultConfig()
		cfg.Stream.PaceDelay = "never"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("stream.pace_delay")))
		Expect(cfg.Stream.PaceDelay).To(Equal("never"))
	})
})

var _ = Describe("AgentConfig", func() {
	It("treats an empty temperature as unset", func() {
		t, err := config.AgentConfig{}.TemperatureValue()
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(BeNil())
	})

	It("keeps an explicit zero temperature", func() {
		t, err := config.AgentConfig{Temperature: "0"}.TemperatureValue()
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(HaveValue(BeZero()))
	})
})

var _ = Describe("PresetConfig", func() {
	It("selects the gateway default model for openrouter", func() {
		cfg, err := config.PresetConfig("openrouter")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.LLM.Model).To(Equal("qwen/qwen3-235b-a22b-2507"))
		Expect(cfg.Server.Listen).To(Equal(":8000"))
	})

	It("is case-insensitive", func() {
		cfg, err := config.PresetConfig("OpenAI")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.LLM.Model).To(Equal("gpt-4o"))
	})

	It("keeps an explicit zero latency for local servers through a load", func() {
		dir := GinkgoT().TempDir()
		cfg, err := config.PresetConfig("local")
		Expect(err).NotTo(HaveOccurred())

		c, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Save(cfg)).To(Succeed())

		loaded, err := c.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Tools.WeatherLatency).To(Equal("0s"))
		Expect(loaded.LLM.RequestTimeout).To(Equal("10m"))
	})

	It("returns error for unknown preset", func() {
		_, err := config.PresetConfig("anthropic")
		Expect(err).To(MatchError(ContainSubstring("openrouter, openai, local")))
	})
})

var _ = Describe("ParseConfigTOML", func() {
	It("returns empty config for empty input", func() {
		cfg, err := config.ParseConfigTOML([]byte(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(*cfg).To(Equal(config.Config{}))
	})

	It("rejects unsupported config version", func() {
		_, err := config.ParseConfigTOML([]byte("version = 2\n"))
		Expect(err).To(HaveOccurred())
	})

	It("validates values", func() {
		_, err := config.ParseConfigTOML([]byte("[agent]\ntemperature = \"hot\"\n"))
		Expect(err).To(MatchError(ContainSubstring("agent.temperature")))
	})
})
