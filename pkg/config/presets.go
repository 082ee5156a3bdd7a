package config

import (
	"fmt"
	"strings"
)

var presets = map[string]func(cfg *Config){
	"openrouter": func(cfg *Config) {
		cfg.LLM.Model = "qwen/qwen3-235b-a22b-2507"
	},
	"openai": func(cfg *Config) {
		cfg.LLM.Model = "gpt-4o"
	},
	// OpenAI-compatible servers such as vLLM or llama.cpp: slow first tokens,
	// no simulated tool latency.
	"local": func(cfg *Config) {
		cfg.LLM.RequestTimeout = "10m"
		cfg.Tools.WeatherLatency = "0s"
	},
}

// PresetConfig returns the defaults adjusted for the named upstream. Names
// are case-insensitive.
func PresetConfig(name string) (*Config, error) {
	apply, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(ValidPresetNames(), ", "))
	}

	cfg := NewDefaultConfig()
	apply(cfg)
	return cfg, nil
}

// ValidPresetNames returns the recognized preset names.
func ValidPresetNames() []string {
	return []string{"openrouter", "openai", "local"}
}
