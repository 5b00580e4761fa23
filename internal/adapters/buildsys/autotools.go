package buildsys

import (
	"context"
	"errors"
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Autotools drives configure scripts followed by make.
type Autotools struct {
	pruner
	executor ports.Executor
}

// NewAutotools creates a new Autotools build system.
func NewAutotools(executor ports.Executor, walker ports.Walker, logger ports.Logger) *Autotools {
	return &Autotools{pruner: pruner{walker: walker, logger: logger}, executor: executor}
}

// Configure runs the configure script of the staged source from inside the build directory.
func (a *Autotools) Configure(ctx context.Context, state *domain.BuildState) error {
	script := state.SourcePath("configure")
	if _, err := os.Stat(script); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return zerr.With(zerr.Wrap(domain.ErrArtifactMissing, "source has no configure script"), "path", script)
		}
		return zerr.Wrap(err, "failed to stat configure script")
	}
	if err := os.MkdirAll(state.BuildDir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create build directory")
	}

	args, err := a.configureArgs(state)
	if err != nil {
		return err
	}
	return a.executor.Execute(ctx, domain.NewCommand(state.BuildDir, state.Env(), script, args...))
}

func (a *Autotools) configureArgs(state *domain.BuildState) ([]string, error) {
	defaults := domain.OptionsFrom("--prefix", state.InstallDir)
	switch linkage(state) {
	case domain.LinkageStatic:
		defaults.SetFlag("--enable-static")
		defaults.SetFlag("--disable-shared")
	case domain.LinkageShared:
		defaults.SetFlag("--enable-shared")
		defaults.SetFlag("--disable-static")
	}

	extra, err := extraArgs(state)
	if err != nil {
		return nil, err
	}
	return append(configureArgs(merge(defaults, state)), extra...), nil
}

// Build runs make with the configured job count.
func (a *Autotools) Build(ctx context.Context, state *domain.BuildState) error {
	return a.executor.Execute(ctx, domain.NewCommand(state.BuildDir, state.Env(), "make", "-j"+jobs(state)))
}

// Install runs make install and removes the library flavour the kind excludes.
func (a *Autotools) Install(ctx context.Context, state *domain.BuildState) error {
	return a.pruner.install(state, func() error {
		return a.executor.Execute(ctx, domain.NewCommand(state.BuildDir, state.Env(), "make", "install"))
	})
}
