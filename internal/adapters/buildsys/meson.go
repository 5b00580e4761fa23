package buildsys

import (
	"context"
	"fmt"
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Meson drives meson setup, compile and install. Meson targets always build shared libraries.
type Meson struct {
	executor ports.Executor
	logger   ports.Logger
}

// NewMeson creates a new Meson build system.
func NewMeson(executor ports.Executor, logger ports.Logger) *Meson {
	return &Meson{executor: executor, logger: logger}
}

// Configure sets up the build directory.
func (m *Meson) Configure(ctx context.Context, state *domain.BuildState) error {
	if err := os.MkdirAll(state.BuildDir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create build directory")
	}

	defaults := domain.OptionsFrom(
		"prefix", state.InstallDir,
		"buildtype", "release",
	)
	opts := merge(defaults, state)
	if v, ok := opts.Get("default_library"); ok && v != "shared" {
		m.logger.Warn(fmt.Sprintf("%s: meson targets build shared libraries only, ignoring default_library=%s", state, v))
	}
	opts.Set("default_library", "shared")

	args := append([]string{"setup", state.BuildDir, state.SourceDir}, defineArgs(opts, "true")...)
	extra, err := extraArgs(state)
	if err != nil {
		return err
	}
	args = append(args, extra...)

	return m.executor.Execute(ctx, domain.NewCommand(state.BuildDir, state.Env(), "meson", args...))
}

// Build compiles the build directory.
func (m *Meson) Build(ctx context.Context, state *domain.BuildState) error {
	return m.executor.Execute(ctx, domain.NewCommand(state.BuildDir, state.Env(),
		"meson", "compile", "-C", state.BuildDir, "-j", jobs(state)))
}

// Install installs the build directory.
func (m *Meson) Install(ctx context.Context, state *domain.BuildState) error {
	return m.executor.Execute(ctx, domain.NewCommand(state.BuildDir, state.Env(),
		"meson", "install", "-C", state.BuildDir))
}
