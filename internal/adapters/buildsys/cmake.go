package buildsys

import (
	"context"
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// CMake drives cmake configure, build and install.
type CMake struct {
	pruner
	goos     string
	executor ports.Executor
}

// NewCMake creates a CMake build system rendering flags for goos.
func NewCMake(goos string, executor ports.Executor, walker ports.Walker, logger ports.Logger) *CMake {
	return &CMake{pruner: pruner{walker: walker, logger: logger}, goos: goos, executor: executor}
}

// Configure generates the build tree.
func (c *CMake) Configure(ctx context.Context, state *domain.BuildState) error {
	if err := os.MkdirAll(state.BuildDir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create build directory")
	}

	args := []string{"-S", state.SourceDir, "-B", state.BuildDir}
	if state.Target != nil && state.Target.Generator != "" {
		args = append(args, "-G", state.Target.Generator)
	}

	defaults := domain.OptionsFrom(
		"CMAKE_INSTALL_PREFIX", state.InstallDir,
		"CMAKE_BUILD_TYPE", "Release",
	)
	switch linkage(state) {
	case domain.LinkageStatic:
		defaults.Set("BUILD_SHARED_LIBS", "OFF")
	case domain.LinkageShared:
		defaults.Set("BUILD_SHARED_LIBS", "ON")
	}
	if c.goos == "darwin" {
		defaults.Set("CMAKE_OSX_ARCHITECTURES", string(state.Arch))
		if state.DeploymentTarget != "" {
			defaults.Set("CMAKE_OSX_DEPLOYMENT_TARGET", state.DeploymentTarget)
		}
	}
	args = append(args, defineArgs(merge(defaults, state), "ON")...)

	extra, err := extraArgs(state)
	if err != nil {
		return err
	}
	args = append(args, extra...)

	return c.executor.Execute(ctx, domain.NewCommand(state.BuildDir, state.Env(), "cmake", args...))
}

// Build compiles the build tree.
func (c *CMake) Build(ctx context.Context, state *domain.BuildState) error {
	return c.executor.Execute(ctx, domain.NewCommand(state.BuildDir, state.Env(),
		"cmake", "--build", state.BuildDir, "--parallel", jobs(state)))
}

// Install installs the build tree into the install directory chosen at configure time.
// Projects that install both flavours regardless of BUILD_SHARED_LIBS are pruned like autotools.
func (c *CMake) Install(ctx context.Context, state *domain.BuildState) error {
	return c.pruner.install(state, func() error {
		return c.executor.Execute(ctx, domain.NewCommand(state.BuildDir, state.Env(),
			"cmake", "--install", state.BuildDir))
	})
}
