package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// Verifier checks for the presence of files.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Exists reports whether every file exists below root.
// An empty list is never satisfied: a probe without files proves nothing.
func (v *Verifier) Exists(root string, files []string) (bool, error) {
	if len(files) == 0 {
		return false, nil
	}
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				return false, nil
			}
			return false, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
		}
	}
	return true, nil
}
