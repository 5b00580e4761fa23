package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

// Fetcher downloads source archives.
type Fetcher interface {
	// Fetch downloads src.URL into dir and verifies src.Checksum.
	// A previously downloaded file that still matches the checksum is reused.
	// It returns the path of the verified archive.
	Fetch(ctx context.Context, src domain.Source, dir string, opts domain.FetchSettings) (string, error)
}

// Extractor unpacks source archives.
type Extractor interface {
	// Extract unpacks archive into dest, dropping the archive's single top-level directory.
	Extract(ctx context.Context, archive, dest string) error
}

// Patcher applies unified diffs.
type Patcher interface {
	// Apply applies the patch file to the tree rooted at dir.
	Apply(ctx context.Context, patchFile, dir string) error
}

// Rewriter edits installed text files.
type Rewriter interface {
	// RewriteLines replaces every line of path that starts with a replacement prefix.
	RewriteLines(path string, lines []domain.LineReplacement) error
	// RelocatePkgConfig rewrites absolute prefixes of pkg-config files under installDir.
	// It returns the number of files changed.
	RelocatePkgConfig(installDir string) (int, error)
}
