// Package credentials resolves upstream API keys from the environment and the
// credentials.toml file in the .uistream/ directory.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/uistream/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// Manager reads and writes credentials.toml. Every call re-reads the file so
// a running server sees keys stored by "uistream auth" without a restart.
type Manager struct {
	path string
}

// NewManager resolves the .uistream/ directory (override first, then the
// standard dotdir lookup) and returns a Manager for its credentials file.
func NewManager(override string) (*Manager, error) {
	target, err := dotdir.NewManager().Resolve(override)
	if err != nil {
		return nil, err
	}

	return &Manager{path: filepath.Join(target, credentialsFile)}, nil
}

// GetTarget returns the path of the credentials file.
func (m *Manager) GetTarget() string {
	return m.path
}

// Load reads the credentials file. A missing file yields empty credentials.
func (m *Manager) Load() (*Credentials, error) {
	creds := &Credentials{Version: currentVersion}

	data, err := os.ReadFile(m.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading credentials: %w", err)
	default:
		if err := toml.Unmarshal(data, creds); err != nil {
			return nil, fmt.Errorf("parsing credentials: %w", err)
		}
	}

	if creds.Providers == nil {
		creds.Providers = make(map[string]ProviderCredential)
	}
	return creds, nil
}

// Save replaces the credentials file. The new content is written to a
// temporary file in the same directory and renamed into place, so readers
// never observe a partial file. The file is only readable by its owner.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".credentials-*.toml")
	if err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// Get returns the stored credential for provider and whether one exists.
func (m *Manager) Get(provider string) (ProviderCredential, bool, error) {
	creds, err := m.Load()
	if err != nil {
		return ProviderCredential{}, false, err
	}

	c, ok := creds.Providers[provider]
	return c, ok, nil
}

// Set stores cred for provider, leaving other providers untouched.
func (m *Manager) Set(provider string, cred ProviderCredential) error {
	return m.update(func(c *Credentials) {
		c.Providers[provider] = cred
	})
}

// SetKey stores key for provider and clears any stored base URL.
func (m *Manager) SetKey(provider, key string) error {
	return m.Set(provider, ProviderCredential{APIKey: key})
}

// GetKey returns the stored key for provider, or "" when none is stored.
func (m *Manager) GetKey(provider string) (string, error) {
	c, _, err := m.Get(provider)
	return c.APIKey, err
}

// RemoveKey deletes the stored credential for provider. Removing a provider
// that has nothing stored is not an error.
func (m *Manager) RemoveKey(provider string) error {
	return m.update(func(c *Credentials) {
		delete(c.Providers, provider)
	})
}

// ListProviders returns the providers with stored credentials, sorted.
func (m *Manager) ListProviders() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(creds.Providers))
	for name := range creds.Providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (m *Manager) update(fn func(*Credentials)) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	fn(creds)
	return m.Save(creds)
}

// EnvVarForProvider returns the API key variable of provider, or "" for an
// unknown provider.
func EnvVarForProvider(provider string) string {
	if p, ok := lookupProvider(provider); ok {
		return p.EnvVar
	}
	return ""
}

// IsGateway reports whether provider is a gateway.
func IsGateway(provider string) bool {
	p, ok := lookupProvider(provider)
	return ok && p.Gateway
}

// SupportedProviders returns the providers in precedence order.
func SupportedProviders() []string {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
	}
	return names
}

// IsSupportedProvider reports whether provider is known.
func IsSupportedProvider(provider string) bool {
	_, ok := lookupProvider(provider)
	return ok
}

func lookupProvider(name string) (Provider, bool) {
	i := slices.IndexFunc(providers, func(p Provider) bool { return p.Name == name })
	if i < 0 {
		return Provider{}, false
	}
	return providers[i], true
}
