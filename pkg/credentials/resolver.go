package credentials

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotConfigured is returned when neither the gateway nor the primary
// provider has an API key.
var ErrNotConfigured = errors.New("api key not configured")

// NotConfiguredDetail is the client-facing message for ErrNotConfigured.
const NotConfiguredDetail = "API key not configured. Set OPENROUTER_API_KEY or OPENAI_API_KEY."

const (
	// ProviderOpenRouter is the OpenAI-compatible gateway.
	ProviderOpenRouter = "openrouter"

	// ProviderOpenAI is the primary provider.
	ProviderOpenAI = "openai"

	// ModelEnvVar overrides the model id for whichever provider is selected.
	ModelEnvVar = "MODEL_ID"

	// BaseURLEnvVar overrides the primary provider's base URL.
	BaseURLEnvVar = "OPENAI_BASE_URL"
)

// Provider describes where a key is found and how the upstream is addressed.
type Provider struct {
	Name         string
	EnvVar       string
	BaseURL      string
	DefaultModel string

	// Gateway providers route to many models, so the client's requested model
	// is honoured.
	Gateway bool
}

// providers is in precedence order.
var providers = []Provider{
	{
		Name:         ProviderOpenRouter,
		EnvVar:       "OPENROUTER_API_KEY",
		BaseURL:      "https://openrouter.ai/api/v1",
		DefaultModel: "qwen/qwen3-235b-a22b-2507",
		Gateway:      true,
	},
	{
		Name:         ProviderOpenAI,
		EnvVar:       "OPENAI_API_KEY",
		DefaultModel: "gpt-4o",
	},
}

// Resolved is the outcome of a credential lookup.
type Resolved struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Gateway  bool
}

// Store is the stored-credential lookup used as a fallback to the
// environment. *Manager implements it.
type Store interface {
	Get(provider string) (ProviderCredential, bool, error)
}

// Resolver picks the upstream credentials for a request.
type Resolver struct {
	// Getenv reads the environment. Defaults to os.Getenv.
	Getenv func(string) string

	// Store, if set, is consulted when a provider's variable is unset.
	Store Store

	// Model is the configured model. MODEL_ID still takes precedence.
	Model string
}

// Configured reports whether any provider has a key.
func (r *Resolver) Configured() bool {
	_, err := r.Resolve()
	return err == nil
}

// Resolve returns the first provider with a key, gateway first. It returns
// ErrNotConfigured when none has one.
func (r *Resolver) Resolve() (*Resolved, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	for _, p := range providers {
		var stored ProviderCredential
		if r.Store != nil {
			var err error
			stored, _, err = r.Store.Get(p.Name)
			if err != nil {
				return nil, fmt.Errorf("reading stored %s credentials: %w", p.Name, err)
			}
		}

		key := getenv(p.EnvVar)
		if key == "" {
			key = stored.APIKey
		}
		if key == "" {
			continue
		}

		resolved := &Resolved{
			Provider: p.Name,
			APIKey:   key,
			BaseURL:  p.BaseURL,
			Model:    p.DefaultModel,
			Gateway:  p.Gateway,
		}
		if !p.Gateway {
			resolved.BaseURL = firstNonEmpty(getenv(BaseURLEnvVar), stored.BaseURL, p.BaseURL)
		}
		if r.Model != "" {
			resolved.Model = r.Model
		}
		if model := getenv(ModelEnvVar); model != "" {
			resolved.Model = model
		}
		return resolved, nil
	}

	return nil, ErrNotConfigured
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
