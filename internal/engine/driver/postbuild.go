package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// postBuild runs the declarative touch-up of installed artifacts, then the target hook.
func (r *run) postBuild(ctx context.Context, state *domain.BuildState) error {
	pb := state.Target.PostBuild

	for _, rn := range pb.Renames {
		from, to := state.InstallPath(rn.From), state.InstallPath(rn.To)
		if !exists(from) {
			return missing(from)
		}
		if err := os.MkdirAll(filepath.Dir(to), 0o750); err != nil {
			return zerr.Wrap(err, "failed to create rename destination")
		}
		if err := os.Rename(from, to); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to rename installed file"), "path", from)
		}
	}

	for _, rel := range pb.CopyToBin {
		from := state.BuildPath(rel)
		to := state.InstallPath("bin/" + filepath.Base(filepath.FromSlash(rel)))
		if err := copyExecutable(from, to); err != nil {
			return err
		}
	}

	for _, rw := range pb.Rewrites {
		if err := r.svc.Rewriter.RewriteLines(state.InstallPath(rw.File), rw.Lines); err != nil {
			return err
		}
	}

	n, err := r.svc.Rewriter.RelocatePkgConfig(state.InstallDir)
	if err != nil {
		return err
	}
	if n > 0 {
		r.svc.Logger.Info(fmt.Sprintf("%s: relocated %d pkg-config files", state, n))
	}

	if hook := state.Target.Hooks.PostBuild; hook != nil {
		return hook(ctx, state)
	}
	return nil
}

func copyExecutable(from, to string) error {
	src, err := os.Open(from) //nolint:gosec // path comes from the catalog
	if err != nil {
		if os.IsNotExist(err) {
			return missing(from)
		}
		return zerr.With(zerr.Wrap(err, "failed to open build artifact"), "path", from)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(filepath.Dir(to), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create bin directory")
	}
	dst, err := os.OpenFile(to, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755) //nolint:gosec // installed tools are executable
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create installed file"), "path", to)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy build artifact"), "path", to)
	}
	return dst.Close()
}

func missing(path string) error {
	return zerr.With(zerr.Wrap(domain.ErrArtifactMissing, "expected file not found"), "path", path)
}
