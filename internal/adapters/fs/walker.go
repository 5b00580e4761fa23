// Package fs provides file system adapters: install probes, target fingerprints and tree listings.
package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/karrick/godirwalk"
	"go.trai.ch/zerr"
)

// Walker lists the files of a tree.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// Files returns every non-directory entry below root as a slash separated relative path, sorted.
// A missing root is an empty tree.
func (w *Walker) Files(root string) ([]string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to stat tree"), "path", root)
	}
	if !info.IsDir() {
		return nil, zerr.With(zerr.New("not a directory"), "path", root)
	}

	var files []string
	err = godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(name string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, name)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
			return nil
		},
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to walk tree"), "path", root)
	}

	slices.Sort(files)
	return files, nil
}
