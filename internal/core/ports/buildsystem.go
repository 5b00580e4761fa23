package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=buildsystem.go -destination=mocks/mock_buildsystem.go -package=mocks

// BuildSystem drives one native build tool.
//
// Every method runs its tool inside state.BuildDir and never writes to state.SourceDir.
type BuildSystem interface {
	// Configure renders state.Options into the tool's command line and configures the build tree.
	Configure(ctx context.Context, state *domain.BuildState) error
	// Build compiles using state.Jobs parallel jobs.
	Build(ctx context.Context, state *domain.BuildState) error
	// Install copies artifacts into state.InstallDir and enforces the kind's linkage.
	Install(ctx context.Context, state *domain.BuildState) error
}

// BuildSystems selects the build system for a target kind.
type BuildSystems interface {
	For(kind domain.Kind) (BuildSystem, error)
}
