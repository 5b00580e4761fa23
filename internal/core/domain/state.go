package domain

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// BuildState is the transient context of one target built for one architecture.
// It is owned by the driver; hooks and adapters may mutate it during the call they receive it in
// but must not keep a reference to it.
type BuildState struct {
	Target *Target
	Arch   Architecture
	// MultiArch is true when the state installs into a per-architecture prefix.
	MultiArch bool

	SourceDir  string
	BuildDir   string
	InstallDir string
	// Prefix is the root install prefix shared by all architectures.
	Prefix   string
	PatchDir string

	Options     *Options
	Environment map[string]string
	Jobs        int
	Features    map[string]bool

	DeploymentTarget string
}

// Feature reports whether the named feature is enabled.
func (s *BuildState) Feature(name string) bool {
	return s.Features[name]
}

// SourcePath joins rel onto the staged source directory.
func (s *BuildState) SourcePath(rel string) string {
	return filepath.Join(s.SourceDir, filepath.FromSlash(rel))
}

// BuildPath joins rel onto the build directory.
func (s *BuildState) BuildPath(rel string) string {
	return filepath.Join(s.BuildDir, filepath.FromSlash(rel))
}

// InstallPath joins rel onto the install directory.
func (s *BuildState) InstallPath(rel string) string {
	return filepath.Join(s.InstallDir, filepath.FromSlash(rel))
}

// SetEnv assigns an environment variable.
func (s *BuildState) SetEnv(key, value string) {
	if s.Environment == nil {
		s.Environment = make(map[string]string)
	}
	s.Environment[key] = value
}

// AppendEnv extends a space separated environment variable such as CFLAGS.
func (s *BuildState) AppendEnv(key, value string) {
	if cur := s.Environment[key]; cur != "" {
		value = cur + " " + value
	}
	s.SetEnv(key, value)
}

// PrependPath adds dir at the front of a path list variable.
func (s *BuildState) PrependPath(key, dir string) {
	cur := s.Environment[key]
	if cur == "" {
		s.SetEnv(key, dir)
		return
	}
	for _, existing := range filepath.SplitList(cur) {
		if existing == dir {
			return
		}
	}
	s.SetEnv(key, dir+string(filepath.ListSeparator)+cur)
}

// Env renders the environment as sorted KEY=VALUE entries.
func (s *BuildState) Env() []string {
	keys := slices.Sorted(maps.Keys(s.Environment))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+s.Environment[k])
	}
	return out
}

// String identifies the state in log lines.
func (s *BuildState) String() string {
	var b strings.Builder
	if s.Target != nil {
		b.WriteString(s.Target.Name.String())
	}
	b.WriteString("@")
	b.WriteString(string(s.Arch))
	return b.String()
}
