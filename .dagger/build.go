package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/uistream/internal/dagger"
)

// binaries are the main packages shipped in every build.
var binaries = []string{
	"./cli/uistream",
	"./cli/uistreamchat",
	"./cli/uistreamapi",
}

// target is one GOOS/GOARCH pair and the C compiler that builds it. The
// sqlite transcript store needs cgo, so every target is built with a real
// cross compiler rather than CGO_ENABLED=0.
type target struct {
	goos   string
	goarch string
	cc     string
	pkg    string
}

var targets = []target{
	{goos: "linux", goarch: "amd64", cc: "x86_64-linux-gnu-gcc", pkg: "gcc-x86-64-linux-gnu"},
	{goos: "linux", goarch: "arm64", cc: "aarch64-linux-gnu-gcc", pkg: "gcc-aarch64-linux-gnu"},
}

// Build compiles every binary for every target and returns them laid out as
// <goos>/<goarch>/<binary>.
func (t *UIStream) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	outputs := dag.Directory()

	for _, tg := range targets {
		path := fmt.Sprintf("%s/%s/", tg.goos, tg.goarch)

		build := t.goContainer().
			WithExec([]string{"apt-get", "install", "-y", tg.pkg}).
			WithEnvVariable("GOOS", tg.goos).
			WithEnvVariable("GOARCH", tg.goarch).
			WithEnvVariable("CC", tg.cc)
		for _, bin := range binaries {
			build = build.WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, bin})
		}

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned binaries with the build metadata printed by
// "uistream version" and sent as the upstream User-Agent.
func (t *UIStream) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	const pkg = "github.com/papercomputeco/uistream/pkg/utils"
	buildtime := time.Now().UTC().Format(time.RFC3339)

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X '%s.Version=%s'", pkg, version),
		fmt.Sprintf("-X '%s.Sha=%s'", pkg, commit),
		fmt.Sprintf("-X '%s.Buildtime=%s'", pkg, buildtime),
	}

	return t.Build(ctx, strings.Join(ldflags, " "))
}
