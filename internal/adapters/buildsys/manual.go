package buildsys

import (
	"context"
	"os"
	"strings"

	"github.com/google/shlex"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Manual runs the command lines a target declares for each step.
//
// Command lines are split with shell quoting rules; ${prefix}, ${source}, ${build}, ${jobs}
// and ${arch} are expanded in every word after splitting.
type Manual struct {
	executor ports.Executor
}

// NewManual creates a new Manual build system.
func NewManual(executor ports.Executor) *Manual {
	return &Manual{executor: executor}
}

// Configure runs the configure commands.
func (m *Manual) Configure(ctx context.Context, state *domain.BuildState) error {
	if err := os.MkdirAll(state.BuildDir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create build directory")
	}
	return m.run(ctx, state, state.Target.Commands.Configure)
}

// Build runs the build commands.
func (m *Manual) Build(ctx context.Context, state *domain.BuildState) error {
	return m.run(ctx, state, state.Target.Commands.Build)
}

// Install runs the install commands.
func (m *Manual) Install(ctx context.Context, state *domain.BuildState) error {
	if err := os.MkdirAll(state.InstallDir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create install directory")
	}
	return m.run(ctx, state, state.Target.Commands.Install)
}

func (m *Manual) run(ctx context.Context, state *domain.BuildState, lines []string) error {
	expand := strings.NewReplacer(
		"${prefix}", state.InstallDir,
		"${source}", state.SourceDir,
		"${build}", state.BuildDir,
		"${jobs}", jobs(state),
		"${arch}", string(state.Arch),
	)

	for _, line := range lines {
		words, err := shlex.Split(line)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrInvalidTarget, "command cannot be split"), "command", line)
		}
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			words[i] = expand.Replace(w)
		}
		if err := m.executor.Execute(ctx, domain.NewCommand(state.BuildDir, state.Env(), words[0], words[1:]...)); err != nil {
			return err
		}
	}
	return nil
}
