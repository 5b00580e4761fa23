package domain

import "go.trai.ch/zerr"

var (
	// ErrTargetAlreadyExists is returned when a catalog receives two targets with the same name.
	ErrTargetAlreadyExists = zerr.New("target already exists")

	// ErrUnknownTarget is returned when a requested name or a prerequisite is not in the catalog.
	ErrUnknownTarget = zerr.New("unknown target")

	// ErrCycleDetected is returned when the prerequisite graph contains a circular dependency.
	ErrCycleDetected = zerr.New("circular dependency")

	// ErrInvalidTarget is returned when a target definition is incomplete or contradictory.
	ErrInvalidTarget = zerr.New("invalid target definition")

	// ErrInvalidCatalog is returned when the catalog file cannot be parsed or validated.
	ErrInvalidCatalog = zerr.New("invalid catalog")

	// ErrInvalidOverride is returned when a command line option override is malformed.
	ErrInvalidOverride = zerr.New("invalid option override")

	// ErrUnsupportedKind is returned when no build system is registered for a target kind.
	ErrUnsupportedKind = zerr.New("unsupported build system kind")

	// ErrUnsupportedArchitecture is returned when an architecture is not part of the configured set.
	ErrUnsupportedArchitecture = zerr.New("unsupported architecture")

	// ErrFetchFailed is returned when a source archive cannot be downloaded.
	ErrFetchFailed = zerr.New("failed to fetch source")

	// ErrChecksumMismatch is returned when downloaded content does not match its declared checksum.
	ErrChecksumMismatch = zerr.New("checksum mismatch")

	// ErrExtractFailed is returned when a source archive cannot be unpacked.
	ErrExtractFailed = zerr.New("failed to extract source")

	// ErrPatchNotFound is returned when a named patch file does not exist.
	ErrPatchNotFound = zerr.New("patch not found")

	// ErrPatchFailed is returned when a patch does not apply cleanly.
	ErrPatchFailed = zerr.New("failed to apply patch")

	// ErrToolFailed is returned when a native build tool exits with a non-zero status.
	ErrToolFailed = zerr.New("build tool failed")

	// ErrArtifactMissing is returned when post-build processing expects a file that was not installed.
	ErrArtifactMissing = zerr.New("artifact missing")

	// ErrRewriteFailed is returned when an installed metadata file cannot be rewritten.
	ErrRewriteFailed = zerr.New("failed to rewrite installed file")

	// ErrBuildFailed is returned by the driver when any target fails.
	ErrBuildFailed = zerr.New("build failed")

	// ErrNoTargets is returned when a command that needs target names received none.
	ErrNoTargets = zerr.New("no targets specified")
)

// BuildError reports the target, architecture and step at which a run stopped.
// It matches ErrBuildFailed with errors.Is and unwraps to the cause.
type BuildError struct {
	Target string
	Arch   Architecture
	Step   Step
	Err    error
}

func (e *BuildError) Error() string {
	return ErrBuildFailed.Error() + ": " + e.Err.Error()
}

// Message returns the headline used when the error chain is rendered.
func (e *BuildError) Message() string {
	return ErrBuildFailed.Error()
}

// Metadata identifies where the build stopped.
func (e *BuildError) Metadata() map[string]any {
	return map[string]any{
		"target": e.Target,
		"arch":   string(e.Arch),
		"step":   e.Step.String(),
	}
}

// Is reports whether target is ErrBuildFailed.
func (e *BuildError) Is(target error) bool {
	return target == ErrBuildFailed
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
