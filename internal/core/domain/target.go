// Package domain contains the core model of kiln: targets, their per-architecture build state,
// the catalog and the dependency resolver.
package domain

import (
	"context"
	"net/url"
	"path"
	"strings"

	"go.trai.ch/zerr"
)

// Kind selects the build-system adapter used for a target.
type Kind string

// Supported kinds. The -static and -shared variants enforce a library flavour.
const (
	KindManual              Kind = "manual"
	KindConfigureMake       Kind = "configure-make"
	KindConfigureMakeStatic Kind = "configure-make-static"
	KindConfigureMakeShared Kind = "configure-make-shared"
	KindCMake               Kind = "cmake"
	KindCMakeStatic         Kind = "cmake-static"
	KindCMakeShared         Kind = "cmake-shared"
	KindMeson               Kind = "meson"
)

// Kinds lists every supported kind.
var Kinds = []Kind{
	KindManual,
	KindConfigureMake, KindConfigureMakeStatic, KindConfigureMakeShared,
	KindCMake, KindCMakeStatic, KindCMakeShared,
	KindMeson,
}

// Linkage is the library flavour a kind produces.
type Linkage int

const (
	// LinkageDefault leaves the choice to the project.
	LinkageDefault Linkage = iota
	// LinkageStatic keeps static archives only.
	LinkageStatic
	// LinkageShared keeps shared libraries only.
	LinkageShared
)

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Family strips the linkage suffix.
func (k Kind) Family() Kind {
	s := strings.TrimSuffix(strings.TrimSuffix(string(k), "-static"), "-shared")
	return Kind(s)
}

// Linkage returns the flavour enforced by k. Meson targets are always shared.
func (k Kind) Linkage() Linkage {
	switch {
	case k == KindMeson:
		return LinkageShared
	case strings.HasSuffix(string(k), "-static"):
		return LinkageStatic
	case strings.HasSuffix(string(k), "-shared"):
		return LinkageShared
	default:
		return LinkageDefault
	}
}

// Source describes where the source of a target comes from.
// Either URL with Checksum or Git with Ref is set.
type Source struct {
	URL      string
	Checksum string
	Git      string
	Ref      string
	Patches  []string
}

// IsZero reports whether no source is declared.
func (s Source) IsZero() bool {
	return s.URL == "" && s.Git == ""
}

// Filename returns the archive file name derived from the URL.
func (s Source) Filename() string {
	if s.URL == "" {
		return ""
	}
	if u, err := url.Parse(s.URL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(s.URL)
}

// LineReplacement replaces a whole line that starts with Prefix.
type LineReplacement struct {
	Prefix      string
	Replacement string
}

// LineRewrite lists the replacements applied to one installed file.
// File is relative to the install directory.
type LineRewrite struct {
	File  string
	Lines []LineReplacement
}

// Rename moves an installed file; both paths are relative to the install directory.
type Rename struct {
	From string
	To   string
}

// PostBuild describes artifact touch-up performed after installation.
type PostBuild struct {
	Rewrites  []LineRewrite
	CopyToBin []string
	Renames   []Rename
}

// Commands are the shell command lines of a manual target, one slice per step.
type Commands struct {
	Configure []string
	Build     []string
	Install   []string
}

// Conditional is a set of adjustments applied when a feature is enabled.
type Conditional struct {
	Feature     string
	Options     *Options
	Append      *Options
	Environment map[string]string
	Patches     []string
}

// Hooks are optional closures for targets defined in Go.
// PrepareSource and Detect replace the declarative behaviour of their step; Configure and
// PostBuild run in addition to it.
type Hooks struct {
	// PrepareSource replaces fetching, extracting or cloning the source. Patches still apply
	// to the tree it prepares.
	PrepareSource func(ctx context.Context, state *BuildState) error
	// Detect replaces the Detect file probe. A source whose staging did not complete is
	// never reported as staged, whatever Detect answers.
	Detect func(state *BuildState) bool
	// Configure runs before the adapter renders its command line.
	Configure func(state *BuildState) error
	// PostBuild runs after the declarative post-build actions.
	PostBuild func(ctx context.Context, state *BuildState) error
}

// Target is a buildable unit of the catalog.
// A target is immutable once added to a catalog.
type Target struct {
	Name          InternedString
	Version       string
	Kind          Kind
	Prerequisites []InternedString
	MultiPlatform bool
	Source        Source
	// Detect is a file relative to the staged source that proves the source is present.
	Detect string
	// Installs are files relative to the install directory that prove the target is installed.
	Installs     []string
	Generator    string
	Options      *Options
	Append       *Options
	ExtraArgs    string
	Environment  map[string]string
	Commands     Commands
	Conditionals []Conditional
	PostBuild    PostBuild
	Hooks        Hooks
}

// Validate checks the target for contradictions that would only surface mid-build.
func (t *Target) Validate() error {
	fail := func(reason string) error {
		return zerr.With(zerr.With(zerr.Wrap(ErrInvalidTarget, reason), "target", t.Name.String()), "kind", string(t.Kind))
	}

	if t.Name.String() == "" {
		return fail("target name is empty")
	}
	if !t.Kind.Valid() {
		return fail("unknown kind")
	}
	for _, p := range t.Prerequisites {
		if p == t.Name {
			return fail("target lists itself as a prerequisite")
		}
	}
	if t.Source.URL != "" && t.Source.Git != "" {
		return fail("source declares both url and git")
	}
	if t.Source.URL != "" && t.Source.Checksum == "" {
		return fail("source url without checksum")
	}
	if t.Source.Git != "" && t.Source.Ref == "" {
		return fail("git source without ref")
	}
	if t.Source.IsZero() && t.Hooks.PrepareSource == nil && t.Kind != KindManual {
		return fail("target has no source")
	}
	if t.Generator != "" && t.Kind.Family() != KindCMake {
		return fail("generator is only supported for cmake targets")
	}
	if t.Kind == KindManual && len(t.Commands.Build) == 0 && len(t.Commands.Install) == 0 && t.Hooks.PostBuild == nil {
		return fail("manual target has no commands")
	}
	for _, c := range t.Conditionals {
		if c.Feature == "" {
			return fail("conditional without feature")
		}
	}
	return nil
}

// Patches returns the ordered patch names active for the given features.
func (t *Target) Patches(features map[string]bool) []string {
	out := append([]string(nil), t.Source.Patches...)
	for _, c := range t.Conditionals {
		if features[c.Feature] {
			out = append(out, c.Patches...)
		}
	}
	return out
}

// ActiveConditionals returns the conditionals whose feature is enabled.
func (t *Target) ActiveConditionals(features map[string]bool) []Conditional {
	var out []Conditional
	for _, c := range t.Conditionals {
		if features[c.Feature] {
			out = append(out, c)
		}
	}
	return out
}
