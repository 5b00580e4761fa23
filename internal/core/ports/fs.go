package ports

import "go.trai.ch/kiln/internal/core/domain"

//go:generate go run go.uber.org/mock/mockgen -source=fs.go -destination=mocks/mock_fs.go -package=mocks

// Verifier probes the filesystem for completion.
type Verifier interface {
	// Exists reports whether every file, relative to root, exists.
	Exists(root string, files []string) (bool, error)
}

// Fingerprinter hashes a target definition.
type Fingerprinter interface {
	// Fingerprint identifies everything that affects the output of target for arch,
	// including the command line overrides that apply to it.
	Fingerprint(target *domain.Target, arch domain.Architecture, features map[string]bool, overrides []domain.Override) string
}

// Walker lists files.
type Walker interface {
	// Files returns every regular file and symlink below root as slash separated relative paths, sorted.
	Files(root string) ([]string, error)
}
