// Package buildsys adapts native build tools (autotools, CMake, Meson and plain command lists)
// to ports.BuildSystem.
//
// Every adapter renders the merged option mapping of a build state into the tool's own
// command line syntax, configures out of tree inside the build directory and installs into
// the install directory of the state.
package buildsys

import (
	"fmt"
	"runtime"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BuildSystems = (*Registry)(nil)

// Registry maps kind families to build systems.
type Registry struct {
	systems map[domain.Kind]ports.BuildSystem
}

// NewRegistry creates a registry holding every supported build system.
func NewRegistry(executor ports.Executor, walker ports.Walker, logger ports.Logger) *Registry {
	return NewRegistryFor(runtime.GOOS, executor, walker, logger)
}

// NewRegistryFor creates a registry rendering command lines for the given operating system.
func NewRegistryFor(goos string, executor ports.Executor, walker ports.Walker, logger ports.Logger) *Registry {
	return &Registry{
		systems: map[domain.Kind]ports.BuildSystem{
			domain.KindManual:        NewManual(executor),
			domain.KindConfigureMake: NewAutotools(executor, walker, logger),
			domain.KindCMake:         NewCMake(goos, executor, walker, logger),
			domain.KindMeson:         NewMeson(executor, logger),
		},
	}
}

// For returns the build system of kind.
func (r *Registry) For(kind domain.Kind) (ports.BuildSystem, error) {
	if bs, ok := r.systems[kind.Family()]; ok && kind.Valid() {
		return bs, nil
	}
	return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedKind, "no build system for kind"), "kind", string(kind))
}

func jobs(state *domain.BuildState) string {
	if state.Jobs < 1 {
		return "1"
	}
	return fmt.Sprint(state.Jobs)
}
