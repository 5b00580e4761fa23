package buildsys

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// pruner removes the library flavour a kind excludes from what an installation added.
type pruner struct {
	walker ports.Walker
	logger ports.Logger
}

// install runs installCmd and prunes the libraries it added that the linkage of the kind
// excludes. Files present before the installation are never touched.
func (p pruner) install(state *domain.BuildState, installCmd func() error) error {
	unwanted := unwantedLibrary(linkage(state))
	if unwanted == nil {
		return installCmd()
	}

	before, err := p.walker.Files(state.InstallDir)
	if err != nil {
		return err
	}
	if err := installCmd(); err != nil {
		return err
	}
	after, err := p.walker.Files(state.InstallDir)
	if err != nil {
		return err
	}

	removed := 0
	for _, rel := range after {
		if slices.Contains(before, rel) || !unwanted(rel) {
			continue
		}
		if err := os.Remove(state.InstallPath(rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, "failed to remove library"), "file", rel)
		}
		removed++
	}
	if removed > 0 {
		p.logger.Info(fmt.Sprintf("%s: removed %d libraries excluded by %s", state, removed, state.Target.Kind))
	}
	return nil
}

func unwantedLibrary(l domain.Linkage) func(string) bool {
	switch l {
	case domain.LinkageStatic:
		return isSharedLibrary
	case domain.LinkageShared:
		return isStaticLibrary
	default:
		return nil
	}
}

func inLibDir(rel string) bool {
	return strings.HasPrefix(rel, "lib/") && !strings.Contains(strings.TrimPrefix(rel, "lib/"), "/")
}

func isSharedLibrary(rel string) bool {
	if !inLibDir(rel) {
		return false
	}
	base := path.Base(rel)
	return strings.HasSuffix(base, ".so") || strings.Contains(base, ".so.") || strings.HasSuffix(base, ".dylib")
}

func isStaticLibrary(rel string) bool {
	return inLibDir(rel) && filepath.Ext(rel) == ".a"
}
