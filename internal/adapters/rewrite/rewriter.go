// Package rewrite edits installed text artifacts so the install tree can be relocated.
package rewrite

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// RelocatedPrefix is the pkg-config prefix of a relocatable install tree.
const RelocatedPrefix = "${pcfiledir}/../.."

var pkgConfigDirs = []string{"lib/pkgconfig", "share/pkgconfig"}

var _ ports.Rewriter = (*Rewriter)(nil)

// Rewriter implements ports.Rewriter.
type Rewriter struct{}

// NewRewriter creates a new Rewriter.
func NewRewriter() *Rewriter {
	return &Rewriter{}
}

// RewriteLines replaces each line of path starting with a replacement's prefix by prefix+replacement.
// The first matching replacement wins.
func (r *Rewriter) RewriteLines(path string, lines []domain.LineReplacement) error {
	_, err := r.edit(path, func(line string) string {
		for _, l := range lines {
			if strings.HasPrefix(line, l.Prefix) {
				return l.Prefix + l.Replacement
			}
		}
		return line
	})
	return err
}

// RelocatePkgConfig rewrites the pkg-config files of installDir so they resolve relative to their own location.
func (r *Rewriter) RelocatePkgConfig(installDir string) (int, error) {
	abs, err := filepath.Abs(installDir)
	if err != nil {
		return 0, zerr.Wrap(err, "failed to resolve install directory")
	}

	var files []string
	for _, dir := range pkgConfigDirs {
		root := filepath.Join(abs, filepath.FromSlash(dir))
		if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
			continue
		}
		err := godirwalk.Walk(root, &godirwalk.Options{
			Callback: func(path string, de *godirwalk.Dirent) error {
				if path != root && de.IsDir() {
					return godirwalk.SkipThis
				}
				if de.IsRegular() && strings.HasSuffix(path, ".pc") {
					files = append(files, path)
				}
				return nil
			},
		})
		if err != nil {
			return 0, zerr.With(zerr.Wrap(err, "failed to scan pkg-config files"), "dir", root)
		}
	}

	changed := 0
	for _, path := range files {
		ok, err := r.edit(path, func(line string) string {
			if strings.HasPrefix(line, "prefix=") {
				return "prefix=" + RelocatedPrefix
			}
			if isVariable(line) {
				return strings.ReplaceAll(line, abs, "${prefix}")
			}
			return line
		})
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

// isVariable reports whether line is a pkg-config variable definition.
func isVariable(line string) bool {
	name, _, ok := strings.Cut(line, "=")
	return ok && name != "" && !strings.ContainsAny(name, " \t:")
}

// edit rewrites path line by line and reports whether the content changed.
func (r *Rewriter) edit(path string, fn func(string) string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, zerr.With(zerr.Wrap(domain.ErrArtifactMissing, "file to rewrite does not exist"), "file", path)
		}
		return false, zerr.With(zerr.Wrap(domain.ErrRewriteFailed, err.Error()), "file", path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // paths are confined to the install tree
	if err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrRewriteFailed, err.Error()), "file", path)
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = fn(line)
	}
	out := []byte(strings.Join(lines, "\n"))
	if bytes.Equal(out, data) {
		return false, nil
	}

	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrRewriteFailed, err.Error()), "file", path)
	}
	return true, nil
}
