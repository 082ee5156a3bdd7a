package credentials

import "strings"

// Credentials is the content of credentials.toml.
type Credentials struct {
	Version   int                           `toml:"version"`
	Providers map[string]ProviderCredential `toml:"providers"`
}

// ProviderCredential is what is stored for one provider.
type ProviderCredential struct {
	APIKey string `toml:"api_key"`

	// BaseURL points the primary provider at an OpenAI-compatible server
	// (vLLM, llama.cpp, a corporate proxy). OPENAI_BASE_URL still wins.
	// Ignored for the gateway.
	BaseURL string `toml:"base_url,omitempty"`
}

// MaskedKey returns the key with everything but a short prefix and the last
// four characters hidden, for display.
func (c ProviderCredential) MaskedKey() string {
	k := c.APIKey
	if len(k) <= 8 {
		return strings.Repeat("*", len(k))
	}

	prefix := 3
	if i := strings.LastIndex(k[:min(len(k)-4, 12)], "-"); i >= 0 {
		prefix = i + 1
	}
	return k[:prefix] + "…" + k[len(k)-4:]
}
