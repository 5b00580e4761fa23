package fs

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/kiln/internal/core/domain"
)

// Fingerprinter hashes target definitions with xxhash.
type Fingerprinter struct{}

// NewFingerprinter creates a new Fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{}
}

// Fingerprint hashes every field of target that can change what gets installed for arch.
// Conditionals only contribute when their feature is enabled, overrides only when they apply to target.
func (f *Fingerprinter) Fingerprint(
	target *domain.Target,
	arch domain.Architecture,
	features map[string]bool,
	overrides []domain.Override,
) string {
	h := xxhash.New()

	field := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	section := func() {
		_, _ = h.Write([]byte{0})
	}

	field(target.Name.String())
	field(string(target.Kind))
	field(target.Version)
	field(string(arch))
	field(target.Generator)
	field(target.ExtraArgs)
	section()

	for _, p := range target.Prerequisites {
		field(p.String())
	}
	section()

	field(target.Source.URL)
	field(target.Source.Checksum)
	field(target.Source.Git)
	field(target.Source.Ref)
	for _, p := range target.Patches(features) {
		field(p)
	}
	section()

	hashOptions(field, target.Options)
	section()
	hashOptions(field, target.Append)
	section()
	hashEnv(field, target.Environment)
	section()

	for _, c := range target.ActiveConditionals(features) {
		field(c.Feature)
		hashOptions(field, c.Options)
		hashOptions(field, c.Append)
		hashEnv(field, c.Environment)
	}
	section()

	for _, steps := range [][]string{target.Commands.Configure, target.Commands.Build, target.Commands.Install} {
		for _, c := range steps {
			field(c)
		}
		section()
	}

	for _, rw := range target.PostBuild.Rewrites {
		field(rw.File)
		for _, l := range rw.Lines {
			field(l.Prefix)
			field(l.Replacement)
		}
	}
	section()
	for _, b := range target.PostBuild.CopyToBin {
		field(b)
	}
	section()
	for _, r := range target.PostBuild.Renames {
		field(r.From)
		field(r.To)
	}
	section()

	for _, o := range overrides {
		if o.Applies(target.Name.String()) {
			field(o.Key)
			field(o.Value)
		}
	}

	return fmt.Sprintf("%016x", h.Sum64())
}

func hashOptions(field func(string), opts *domain.Options) {
	for opt := range opts.All() {
		field(opt.Key)
		if opt.Flag {
			field("\x01")
			continue
		}
		field(opt.Value)
	}
}

func hashEnv(field func(string), env map[string]string) {
	for _, k := range slices.Sorted(maps.Keys(env)) {
		field(k)
		field(env[k])
	}
}
