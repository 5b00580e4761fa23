// Package patch applies unified diffs to staged sources.
package patch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const devNull = "/dev/null"

var _ ports.Patcher = (*Patcher)(nil)

// Patcher applies patches with -p1 path semantics.
// Hunks that no longer match at their recorded line are searched for in the rest of the file.
type Patcher struct {
	logger ports.Logger
}

// NewPatcher creates a new Patcher.
func NewPatcher(logger ports.Logger) *Patcher {
	return &Patcher{logger: logger}
}

type change struct {
	path    string
	content []byte
	remove  bool
}

// Apply applies every file diff of patchFile below dir.
// Nothing is written unless every hunk applies.
func (p *Patcher) Apply(ctx context.Context, patchFile, dir string) error {
	raw, err := os.ReadFile(patchFile) //nolint:gosec // patch paths come from the catalog
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return zerr.With(zerr.Wrap(domain.ErrPatchNotFound, "patch file does not exist"), "patch", patchFile)
		}
		return zerr.With(zerr.Wrap(err, "failed to read patch"), "patch", patchFile)
	}

	fileDiffs, err := diff.ParseMultiFileDiff(raw)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrPatchFailed, err.Error()), "patch", patchFile)
	}
	if len(fileDiffs) == 0 {
		return zerr.With(zerr.Wrap(domain.ErrPatchFailed, "patch contains no file diffs"), "patch", patchFile)
	}

	changes := make([]change, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := p.applyFile(dir, fd)
		if err != nil {
			return zerr.With(err, "patch", filepath.Base(patchFile))
		}
		changes = append(changes, c)
	}

	for _, c := range changes {
		if c.remove {
			if err := os.Remove(c.path); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to delete patched file"), "file", c.path)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(c.path), 0o750); err != nil {
			return zerr.Wrap(err, "failed to create directory")
		}
		mode := os.FileMode(0o600)
		if info, err := os.Stat(c.path); err == nil {
			mode = info.Mode().Perm()
		}
		if err := os.WriteFile(c.path, c.content, mode); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to write patched file"), "file", c.path)
		}
	}
	return nil
}

func (p *Patcher) applyFile(dir string, fd *diff.FileDiff) (change, error) {
	name := fd.NewName
	remove := fd.NewName == devNull
	if remove {
		name = fd.OrigName
	}
	rel := stripComponent(name)
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if !strings.HasPrefix(path, filepath.Clean(dir)+string(filepath.Separator)) {
		return change{}, zerr.With(zerr.Wrap(domain.ErrPatchFailed, "patched path escapes the source tree"), "file", name)
	}

	var lines []string
	trailingNewline := true
	if fd.OrigName != devNull {
		data, err := os.ReadFile(path) //nolint:gosec // confined to the source tree above
		if err != nil {
			return change{}, zerr.With(zerr.Wrap(domain.ErrPatchFailed, "file to patch does not exist"), "file", rel)
		}
		lines, trailingNewline = splitLines(data)
	}

	offset := 0
	for i, h := range fd.Hunks {
		oldLines, newLines := hunkLines(h.Body)
		want := int(h.OrigStartLine) - 1 + offset
		if h.OrigLines == 0 {
			want = int(h.OrigStartLine) + offset
		}
		at := locate(lines, oldLines, want)
		if at < 0 {
			return change{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrPatchFailed, "hunk does not apply"), "file", rel), "hunk", i+1)
		}
		if at != want && p.logger != nil {
			p.logger.Warn(fmt.Sprintf("%s: hunk #%d applied with offset %d", rel, i+1, at-want))
		}

		patched := make([]string, 0, len(lines)-len(oldLines)+len(newLines))
		patched = append(patched, lines[:at]...)
		patched = append(patched, newLines...)
		patched = append(patched, lines[at+len(oldLines):]...)
		lines = patched
		offset += len(newLines) - len(oldLines) + (at - want)
	}

	if remove {
		return change{path: path, remove: true}, nil
	}
	return change{path: path, content: joinLines(lines, trailingNewline)}, nil
}

// stripComponent drops the leading a/ or b/ directory of git style names.
func stripComponent(name string) string {
	name = strings.TrimPrefix(name, "./")
	if _, rest, ok := strings.Cut(name, "/"); ok {
		return rest
	}
	return name
}

func hunkLines(body []byte) (oldLines, newLines []string) {
	for _, line := range strings.Split(strings.TrimSuffix(string(body), "\n"), "\n") {
		if line == "" {
			oldLines = append(oldLines, "")
			newLines = append(newLines, "")
			continue
		}
		switch line[0] {
		case ' ':
			oldLines = append(oldLines, line[1:])
			newLines = append(newLines, line[1:])
		case '-':
			oldLines = append(oldLines, line[1:])
		case '+':
			newLines = append(newLines, line[1:])
		}
	}
	return oldLines, newLines
}

// locate finds block in lines, preferring the position closest to want.
func locate(lines, block []string, want int) int {
	if want < 0 {
		want = 0
	}
	if want > len(lines) {
		want = len(lines)
	}
	for delta := 0; delta <= len(lines); delta++ {
		for _, at := range []int{want - delta, want + delta} {
			if at >= 0 && at+len(block) <= len(lines) && matches(lines[at:at+len(block)], block) {
				return at
			}
			if delta == 0 {
				break
			}
		}
	}
	return -1
}

func matches(a, b []string) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func splitLines(data []byte) ([]string, bool) {
	if len(data) == 0 {
		return nil, true
	}
	trailing := bytes.HasSuffix(data, []byte("\n"))
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n"), trailing
}

func joinLines(lines []string, trailingNewline bool) []byte {
	if len(lines) == 0 {
		return nil
	}
	s := strings.Join(lines, "\n")
	if trailingNewline {
		s += "\n"
	}
	return []byte(s)
}
