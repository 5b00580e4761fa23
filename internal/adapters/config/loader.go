// Package config loads the target catalog and run settings from kiln.yaml.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinCatalog []byte

var _ ports.CatalogLoader = (*Loader)(nil)

// Loader implements ports.CatalogLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the catalog at path. When path does not exist the built-in catalog is used,
// with relative settings resolved against the directory of path.
func (l *Loader) Load(path string) (*domain.Catalog, domain.Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	switch {
	case errors.Is(err, os.ErrNotExist):
		l.Logger.Warn(fmt.Sprintf("%s not found, using the built-in catalog", path))
		data = builtinCatalog
	case err != nil:
		return nil, domain.Settings{}, zerr.With(zerr.Wrap(err, "failed to read catalog"), "catalog", path)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes a catalog. Relative directories in the settings are resolved against baseDir.
func Parse(data []byte, baseDir string) (*domain.Catalog, domain.Settings, error) {
	var file Catalogfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, domain.Settings{}, zerr.Wrap(domain.ErrInvalidCatalog, err.Error())
	}

	var problems *multierror.Error

	settings, err := buildSettings(file.Settings, baseDir)
	if err != nil {
		problems = multierror.Append(problems, err)
	}

	catalog := domain.NewCatalog()
	for _, nt := range file.Targets {
		target, err := buildTarget(nt.Name, nt.Target)
		if err == nil {
			err = target.Validate()
		}
		if err == nil {
			err = catalog.Add(target)
		}
		if err != nil {
			problems = multierror.Append(problems, zerr.With(err, "line", nt.Line))
		}
	}

	if problems.ErrorOrNil() != nil {
		problems.ErrorFormat = listProblems
		return nil, domain.Settings{}, zerr.With(
			zerr.Wrap(domain.ErrInvalidCatalog, fmt.Sprintf("catalog has %d problems", problems.Len())),
			"problems", problems.Error(),
		)
	}
	return catalog, settings, nil
}

func listProblems(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = "- " + describe(err)
	}
	return strings.Join(lines, "\n")
}

// describe renders an error with its zerr metadata on one line.
func describe(err error) string {
	var b strings.Builder
	b.WriteString(err.Error())
	for e := err; e != nil; e = errors.Unwrap(e) {
		var zErr *zerr.Error
		if !errors.As(e, &zErr) {
			break
		}
		for k, v := range sortedMetadata(zErr.Metadata()) {
			fmt.Fprintf(&b, " %s=%v", k, v)
		}
		e = zErr
	}
	return b.String()
}

func buildSettings(dto SettingsDTO, baseDir string) (domain.Settings, error) {
	s := domain.DefaultSettings()

	s.Prefix = resolveDir(baseDir, dto.Prefix, s.Prefix)
	s.WorkDir = resolveDir(baseDir, dto.WorkDir, s.WorkDir)
	s.PatchDir = resolveDir(baseDir, dto.PatchDir, s.PatchDir)

	switch {
	case dto.Jobs < 0:
		return s, zerr.With(zerr.Wrap(domain.ErrInvalidCatalog, "jobs must not be negative"), "jobs", dto.Jobs)
	case dto.Jobs > 0:
		s.Jobs = dto.Jobs
	}

	if len(dto.Architectures) > 0 {
		s.Architectures = make([]domain.Architecture, 0, len(dto.Architectures))
		for _, a := range dto.Architectures {
			if a == "" || a == domain.ArchAll {
				return s, zerr.With(zerr.Wrap(domain.ErrInvalidCatalog, "invalid architecture"), "arch", a)
			}
			s.Architectures = append(s.Architectures, domain.Architecture(a))
		}
	}

	s.DeploymentTarget = dto.DeploymentTarget
	s.Environment = dto.Environment

	if dto.Fetch.Retries != nil {
		if *dto.Fetch.Retries < 0 {
			return s, zerr.With(zerr.Wrap(domain.ErrInvalidCatalog, "fetch retries must not be negative"), "retries", *dto.Fetch.Retries)
		}
		s.Fetch.Retries = *dto.Fetch.Retries
	}
	if dto.Fetch.Timeout != "" {
		d, err := time.ParseDuration(dto.Fetch.Timeout)
		if err != nil || d <= 0 {
			return s, zerr.With(zerr.Wrap(domain.ErrInvalidCatalog, "invalid fetch timeout"), "timeout", dto.Fetch.Timeout)
		}
		s.Fetch.Timeout = d
	}
	return s, nil
}

// resolveDir makes a configured directory absolute relative to baseDir.
func resolveDir(baseDir, configured, fallback string) string {
	dir := configured
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Clean(filepath.Join(baseDir, dir))
}

func buildTarget(name string, dto TargetDTO) (*domain.Target, error) {
	multiPlatform := true
	if dto.MultiPlatform != nil {
		multiPlatform = *dto.MultiPlatform
	}

	t := &domain.Target{
		Name:          domain.NewInternedString(name),
		Version:       dto.Version,
		Kind:          domain.Kind(dto.Kind),
		Prerequisites: domain.NewInternedStrings(dto.Prerequisites...),
		MultiPlatform: multiPlatform,
		Source: domain.Source{
			URL:      dto.Source.URL,
			Checksum: dto.Source.Checksum,
			Git:      dto.Source.Git,
			Ref:      dto.Source.Ref,
			Patches:  dto.Source.Patches,
		},
		Detect:      dto.Detect,
		Installs:    dto.Installs,
		Generator:   dto.Generator,
		Options:     toOptions(dto.Options),
		Append:      toOptions(dto.AppendOptions),
		Environment: dto.Environment,
		ExtraArgs:   dto.ExtraArgs,
		Commands: domain.Commands{
			Configure: dto.Commands.Configure,
			Build:     dto.Commands.Build,
			Install:   dto.Commands.Install,
		},
		PostBuild: domain.PostBuild{
			CopyToBin: dto.PostBuild.CopyToBin,
		},
	}

	for _, c := range dto.Conditionals {
		t.Conditionals = append(t.Conditionals, domain.Conditional{
			Feature:     c.When,
			Options:     toOptions(c.Options),
			Append:      toOptions(c.AppendOptions),
			Environment: c.Environment,
			Patches:     c.Patches,
		})
	}

	for _, rw := range dto.PostBuild.Rewrite {
		if rw.File == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidTarget, "rewrite without file"), "target", name)
		}
		lr := domain.LineRewrite{File: rw.File}
		for _, p := range rw.Lines {
			lr.Lines = append(lr.Lines, domain.LineReplacement{Prefix: p.Key, Replacement: p.Value})
		}
		t.PostBuild.Rewrites = append(t.PostBuild.Rewrites, lr)
	}

	for _, p := range dto.PostBuild.Rename {
		if p.Null || p.Value == "" {
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidTarget, "rename without destination"), "target", name), "from", p.Key)
		}
		t.PostBuild.Renames = append(t.PostBuild.Renames, domain.Rename{From: p.Key, To: p.Value})
	}

	return t, nil
}

func toOptions(pairs Pairs) *domain.Options {
	if len(pairs) == 0 {
		return nil
	}
	o := domain.NewOptions()
	for _, p := range pairs {
		if p.Null {
			o.SetFlag(p.Key)
			continue
		}
		o.Set(p.Key, p.Value)
	}
	return o
}
