package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dagger/uistream/internal/dagger"
)

const golangciLintVersion = "v2.8.0"

// lintOpts installs golangci-lint on top of goContainer so cgo and the sqlite
// headers needed by the storage drivers are available to the linters.
func (t *UIStream) lintOpts() dagger.GolangcilintOpts {
	base := t.goContainer().
		WithExec([]string{
			"go", "install",
			"github.com/golangci/golangci-lint/v2/cmd/golangci-lint@" + golangciLintVersion,
		})

	return dagger.GolangcilintOpts{
		BaseCtr: base,
		Config:  t.Source.File(".golangci.yml"),
	}
}

// CheckLint runs golangci-lint without applying fixes.
//
// +check
func (t *UIStream) CheckLint(ctx context.Context) (string, error) {
	return dag.Golangcilint(t.Source, t.lintOpts()).Check(ctx)
}

// FixLint runs golangci-lint with --fix and returns the fixed source tree.
func (t *UIStream) FixLint(ctx context.Context) *dagger.Directory {
	return dag.Golangcilint(t.Source, t.lintOpts()).Lint()
}

// tidyScript snapshots go.mod and go.sum, runs "go mod tidy" and diffs each
// file against its snapshot. A missing go.sum counts as empty so a fresh
// checkout fails with the full diff instead of a cp error.
var tidyScript = strings.Join([]string{
	"cp go.mod /tmp/go.mod.HEAD",
	"{ cat go.sum 2>/dev/null || true; } > /tmp/go.sum.HEAD",
	"go mod tidy",
	"status=0",
	"diff -u /tmp/go.mod.HEAD go.mod || status=1",
	"diff -u /tmp/go.sum.HEAD go.sum || status=1",
	"exit $status",
}, "\n")

// CheckGoModTidy fails when "go mod tidy" would change go.mod or go.sum.
//
// +check
func (t *UIStream) CheckGoModTidy(ctx context.Context) (string, error) {
	_, err := t.goContainer().
		WithExec([]string{"sh", "-c", tidyScript}).
		Stdout(ctx)

	var e *dagger.ExecError
	if errors.As(err, &e) {
		return "", fmt.Errorf("go.mod or go.sum are not tidy, run 'go mod tidy' and commit the result:\n\n%s", e.Stdout)
	} else if err != nil {
		return "", fmt.Errorf("running go mod tidy: %w", err)
	}

	return "go.mod and go.sum are tidy", nil
}
