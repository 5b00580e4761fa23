package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// sourceStaged probes for a staged source tree. The tree only counts when its marker shows
// that staging and every active patch completed for the current source.
func (r *run) sourceStaged(state *domain.BuildState) bool {
	t := state.Target
	marker, err := os.ReadFile(r.settings.StagedMarker(t.Name.String()))
	if err != nil || !bytes.Equal(marker, []byte(stagingKey(state))) {
		return false
	}
	if t.Hooks.Detect != nil {
		return t.Hooks.Detect(state)
	}
	if t.Detect != "" {
		return exists(state.SourcePath(t.Detect))
	}
	return isDir(state.SourceDir)
}

// stagingKey identifies the source and patch set a staged tree was prepared from.
func stagingKey(state *domain.BuildState) string {
	src := state.Target.Source
	h := xxhash.New()
	for _, s := range append([]string{src.URL, src.Checksum, src.Git, src.Ref}, state.Target.Patches(state.Features)...) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// acquire stages the pristine source of the target and applies its patches.
// A source is staged at most once per run and shared by every architecture.
// A failed attempt leaves neither the tree nor its marker behind.
func (r *run) acquire(ctx context.Context, state *domain.BuildState, reuse bool) error {
	name := state.Target.Name.String()
	if reuse {
		r.svc.Logger.Info(fmt.Sprintf("%s: reusing staged source", state))
		return nil
	}

	marker := r.settings.StagedMarker(name)
	if err := os.Remove(marker); err != nil && !errors.Is(err, os.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove staging marker"), "path", marker)
	}

	if err := r.prepareSource(ctx, state); err != nil {
		if rmErr := os.RemoveAll(state.SourceDir); rmErr != nil {
			r.svc.Logger.Warn(fmt.Sprintf("%s: failed to remove partial source: %v", state, rmErr))
		}
		return err
	}

	if err := os.MkdirAll(filepath.Dir(marker), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create source directory"), "dir", filepath.Dir(marker))
	}
	if err := os.WriteFile(marker, []byte(stagingKey(state)), 0o600); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write staging marker"), "path", marker)
	}

	r.staged[name] = true
	return nil
}

func (r *run) prepareSource(ctx context.Context, state *domain.BuildState) error {
	if err := r.stage(ctx, state); err != nil {
		return err
	}
	for _, patch := range state.Target.Patches(state.Features) {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.svc.Logger.Info(fmt.Sprintf("%s: applying %s", state, patch))
		if err := r.svc.Patcher.Apply(ctx, r.settings.PatchPath(patch), state.SourceDir); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) stage(ctx context.Context, state *domain.BuildState) error {
	t := state.Target
	src := t.Source

	switch {
	case t.Hooks.PrepareSource != nil:
		if err := resetDir(state.SourceDir); err != nil {
			return err
		}
		return t.Hooks.PrepareSource(ctx, state)

	case src.URL != "":
		archive, err := r.svc.Fetcher.Fetch(ctx, src, r.settings.DownloadDir(), r.settings.Fetch)
		if err != nil {
			return err
		}
		return r.svc.Extractor.Extract(ctx, archive, state.SourceDir)

	case src.Git != "":
		if err := os.RemoveAll(state.SourceDir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to clear source directory"), "dir", state.SourceDir)
		}
		clone := domain.NewCommand("", nil, "git", "clone", "--quiet", src.Git, state.SourceDir)
		if err := r.svc.Executor.Execute(ctx, clone); err != nil {
			return err
		}
		checkout := domain.NewCommand(state.SourceDir, nil, "git", "checkout", "--quiet", "--detach", src.Ref)
		return r.svc.Executor.Execute(ctx, checkout)

	default:
		return os.MkdirAll(state.SourceDir, 0o750)
	}
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to clear directory"), "dir", dir)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "dir", dir)
	}
	return nil
}
