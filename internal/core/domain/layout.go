package domain

import "path/filepath"

const (
	// DefaultCatalogFile is the catalog looked up in the working directory.
	DefaultCatalogFile = "kiln.yaml"

	// DefaultWorkDir holds downloads, staged sources, build trees and the ledger.
	DefaultWorkDir = ".kiln"

	// DefaultPatchDir is where named patches are looked up.
	DefaultPatchDir = "patches"

	// DefaultPrefixDir is the install prefix used when none is configured.
	DefaultPrefixDir = "prefix"

	// PatchExtension is appended to patch names.
	PatchExtension = ".diff"

	downloadsDirName = "sources"
	sourceDirName    = "src"
	buildDirName     = "build"
	ledgerFileName   = "ledger.json"
	stagedSuffix     = ".staged"
	runsDirName      = "runs"
)

// DownloadDir is where validated archives are cached.
func (s Settings) DownloadDir() string {
	return filepath.Join(s.WorkDir, downloadsDirName)
}

// SourceRoot is the staged, pristine source of a target.
func (s Settings) SourceRoot(target string) string {
	return filepath.Join(s.WorkDir, sourceDirName, target)
}

// StagedMarker sits next to the source of target once staging and patching completed.
func (s Settings) StagedMarker(target string) string {
	return filepath.Join(s.WorkDir, sourceDirName, target+stagedSuffix)
}

// SourcesDir is the parent of all staged sources.
func (s Settings) SourcesDir() string {
	return filepath.Join(s.WorkDir, sourceDirName)
}

// BuildRoot is the build tree of a target for one architecture.
func (s Settings) BuildRoot(target string, arch Architecture) string {
	return filepath.Join(s.WorkDir, buildDirName, target, string(arch))
}

// BuildsDir is the parent of all build trees.
func (s Settings) BuildsDir() string {
	return filepath.Join(s.WorkDir, buildDirName)
}

// RunsDir holds one progress journal per run.
func (s Settings) RunsDir() string {
	return filepath.Join(s.WorkDir, runsDirName)
}

// RunJournal is where the progress of run runID is persisted.
func (s Settings) RunJournal(runID string) string {
	return filepath.Join(s.RunsDir(), runID+".json")
}

// LedgerPath is the location of the completion ledger.
func (s Settings) LedgerPath() string {
	return filepath.Join(s.WorkDir, ledgerFileName)
}

// PatchPath is the file of a named patch.
func (s Settings) PatchPath(name string) string {
	return filepath.Join(s.PatchDir, name+PatchExtension)
}

// InstallRoot is the install directory for an architecture.
// Multi-architecture runs install each architecture into its own subdirectory.
func (s Settings) InstallRoot(arch Architecture, multiArch bool) string {
	if multiArch {
		return filepath.Join(s.Prefix, string(arch))
	}
	return s.Prefix
}
