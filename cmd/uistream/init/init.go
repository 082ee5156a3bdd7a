// Package initcmder provides the init command for initializing a local
// .uistream directory in the current working directory.
package initcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/uistream/pkg/cliui"
	"github.com/papercomputeco/uistream/pkg/config"
)

const (
	dirName = ".uistream"
)

const initLongDesc string = `Initialize a new .uistream/ directory in the current working directory.

Creates a local .uistream/ directory that takes precedence over the default
~/.uistream/ directory for configuration, stored credentials and the chat
session, and writes a config.toml with default values.

Use --preset to start from a named preset or a remote config.toml. A preset
overwrites any existing config.toml.

Available presets: openrouter, openai, local

Examples:
  uistream init
  uistream init --preset openrouter
  uistream init --preset https://example.com/uistream/config.toml`

const initShortDesc string = "Initialize a local .uistream/ directory"

// remoteTimeout bounds fetching a remote preset.
const remoteTimeout = 30 * time.Second

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Preset name or URL of a config.toml to start from")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	// Resolve the preset before touching the filesystem
	var cfg *config.Config
	if preset != "" {
		cfg, err = resolvePreset(ctx, out, preset)
		if err != nil {
			return err
		}
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	existed := err == nil && info.IsDir()
	if !existed {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .uistream directory: %w", err)
		}
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	switch {
	case cfg != nil:
		if err := cfger.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s preset: %s\n", preset, filepath.Join(dir, "config.toml"))
	case !fileExists(filepath.Join(dir, "config.toml")):
		if err := cfger.Save(config.NewDefaultConfig()); err != nil {
			return err
		}
	}

	if existed {
		fmt.Fprintf(out, "Already initialized: %s\n", dir)
		return nil
	}

	fmt.Fprintf(out, "Initialized .uistream directory: %s\n", dir)
	return nil
}

func resolvePreset(ctx context.Context, out io.Writer, preset string) (*config.Config, error) {
	if !strings.HasPrefix(preset, "http://") && !strings.HasPrefix(preset, "https://") {
		return config.PresetConfig(preset)
	}

	var cfg *config.Config
	err := cliui.Step(out, "Fetching "+preset, func() error {
		var err error
		cfg, err = fetchRemoteConfig(ctx, preset)
		return err
	})
	return cfg, err
}

func fetchRemoteConfig(ctx context.Context, url string) (*config.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
