package domain

import (
	"runtime"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// FetchSettings configures source downloads.
type FetchSettings struct {
	Retries int
	Timeout time.Duration
}

// Settings are the run-wide knobs shared by every target.
type Settings struct {
	Prefix           string
	WorkDir          string
	PatchDir         string
	Jobs             int
	Architectures    []Architecture
	DeploymentTarget string
	Fetch            FetchSettings
	Environment      map[string]string
}

// DefaultSettings returns the settings used when the catalog does not override them.
func DefaultSettings() Settings {
	return Settings{
		Prefix:        DefaultPrefixDir,
		WorkDir:       DefaultWorkDir,
		PatchDir:      DefaultPatchDir,
		Jobs:          runtime.NumCPU(),
		Architectures: []Architecture{HostArchitecture()},
		Fetch: FetchSettings{
			Retries: 3,
			Timeout: 5 * time.Minute,
		},
	}
}

// Override is a string option supplied on the command line.
// An empty Target applies the override to every target.
type Override struct {
	Target string
	Key    string
	Value  string
}

// ParseOverride parses "KEY=VALUE" or "target:KEY=VALUE".
func ParseOverride(s string) (Override, error) {
	kv, value, ok := strings.Cut(s, "=")
	if !ok {
		return Override{}, zerr.With(zerr.Wrap(ErrInvalidOverride, "expected KEY=VALUE"), "override", s)
	}
	var o Override
	if target, key, scoped := strings.Cut(kv, ":"); scoped {
		o.Target, o.Key = target, key
	} else {
		o.Key = kv
	}
	if o.Key == "" {
		return Override{}, zerr.With(zerr.Wrap(ErrInvalidOverride, "empty key"), "override", s)
	}
	o.Value = value
	return o, nil
}

// Applies reports whether the override targets the named target.
func (o Override) Applies(target string) bool {
	return o.Target == "" || o.Target == target
}

// BuildRequest is the immutable input of a driver run.
type BuildRequest struct {
	Targets       []string
	Architectures []Architecture
	Features      map[string]bool
	Overrides     []Override
	Force         bool
}
