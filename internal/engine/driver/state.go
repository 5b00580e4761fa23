package driver

import (
	"maps"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
)

// newState assembles the build state of a unit.
//
// The environment is layered from least to most specific: toolchain defaults pointing at what
// earlier targets installed, run settings, the target, then its active conditionals.
// Options follow the same order and command line overrides are applied last.
func (r *run) newState(u Unit) *domain.BuildState {
	t := u.Target
	name := t.Name.String()

	state := &domain.BuildState{
		Target:           t,
		Arch:             u.Arch,
		MultiArch:        u.MultiArch,
		SourceDir:        r.settings.SourceRoot(name),
		BuildDir:         r.settings.BuildRoot(name, u.Arch),
		InstallDir:       r.settings.InstallRoot(u.Arch, u.MultiArch),
		Prefix:           r.settings.Prefix,
		PatchDir:         r.settings.PatchDir,
		Jobs:             r.settings.Jobs,
		Features:         maps.Clone(r.req.Features),
		DeploymentTarget: r.settings.DeploymentTarget,
		Environment:      make(map[string]string),
	}

	r.toolchainEnv(state)
	maps.Copy(state.Environment, r.settings.Environment)
	maps.Copy(state.Environment, t.Environment)

	active := t.ActiveConditionals(r.req.Features)
	for _, c := range active {
		maps.Copy(state.Environment, c.Environment)
	}

	opts := t.Options.Clone()
	for _, c := range active {
		opts.Merge(c.Options)
	}
	appendOptions(opts, t.Append, state.Environment)
	for _, c := range active {
		appendOptions(opts, c.Append, state.Environment)
	}
	for _, o := range r.req.Overrides {
		if o.Applies(name) {
			opts.Set(o.Key, o.Value)
		}
	}
	state.Options = opts

	return state
}

// appendOptions extends opts with extra. A key that only exists in the environment, such as
// LDFLAGS, starts from the environment value so the appended words do not replace it.
func appendOptions(opts, extra *domain.Options, env map[string]string) {
	for o := range extra.All() {
		if !opts.Has(o.Key) {
			if v, ok := env[o.Key]; ok {
				opts.Set(o.Key, v)
			}
		}
		if o.Flag {
			opts.SetFlag(o.Key)
			continue
		}
		opts.Append(o.Key, o.Value)
	}
}

// toolchainEnv points compilers and build tools at the prefixes earlier targets installed into.
// Only directories that exist are added. PATH holds the overlay alone; the executor
// puts it in front of the system PATH.
func (r *run) toolchainEnv(state *domain.BuildState) {
	roots := []string{state.InstallDir}
	if state.Prefix != state.InstallDir {
		// Single-platform targets install into the shared prefix.
		roots = append(roots, state.Prefix)
	}

	for i := len(roots) - 1; i >= 0; i-- {
		root := roots[i]
		if dir := filepath.Join(root, "bin"); isDir(dir) {
			state.PrependPath("PATH", dir)
		}
		for _, rel := range []string{"share/pkgconfig", "lib/pkgconfig"} {
			if dir := filepath.Join(root, filepath.FromSlash(rel)); isDir(dir) {
				state.PrependPath("PKG_CONFIG_PATH", dir)
			}
		}
		if isDir(root) {
			state.PrependPath("CMAKE_PREFIX_PATH", root)
		}
	}

	for _, root := range roots {
		if dir := filepath.Join(root, "include"); isDir(dir) {
			state.AppendEnv("CPPFLAGS", "-I"+dir)
		}
		if dir := filepath.Join(root, "lib"); isDir(dir) {
			state.AppendEnv("LDFLAGS", "-L"+dir)
		}
	}

	if r.goos == "darwin" {
		if state.DeploymentTarget != "" {
			state.SetEnv("MACOSX_DEPLOYMENT_TARGET", state.DeploymentTarget)
		}
		arch := "-arch " + string(state.Arch)
		for _, key := range []string{"CFLAGS", "CXXFLAGS", "LDFLAGS"} {
			state.AppendEnv(key, arch)
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
