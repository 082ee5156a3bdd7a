// Package dotdir manages the .uistream/ and ~/.uistream directories.
//
// The session state holds the transcript of the terminal chat client so a
// conversation can be resumed across invocations. It is persisted as a JSON
// file in the resolved directory.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the uistream directory.
	dirName = ".uistream"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path of the .uistream/ directory to use:
//
//	override     created when missing
//	./.uistream  when it exists
//	~/.uistream  when it exists
//
// It returns "" when there is no override and neither directory exists.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating uistream directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	for _, base := range []func() (string, error){os.Getwd, os.UserHomeDir} {
		dir, err := base()
		if err != nil {
			return "", fmt.Errorf("resolving uistream directory: %w", err)
		}
		if candidate := filepath.Join(dir, dirName); dirExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

// HomeTarget returns ~/.uistream, creating it if needed.
func (m *Manager) HomeTarget() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}

	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating uistream dir: %w", err)
	}
	return dir, nil
}

// Resolve returns Target, falling back to HomeTarget when nothing exists yet.
func (m *Manager) Resolve(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	if dir != "" {
		return dir, nil
	}
	return m.HomeTarget()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
