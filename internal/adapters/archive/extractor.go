// Package archive unpacks source archives.
package archive

import (
	"archive/tar"
	"compress/bzip2"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Extractor = (*Extractor)(nil)

type format int

const (
	formatUnknown format = iota
	formatTar
	formatTarGzip
	formatTarBzip2
	formatTarXz
	formatTarZstd
	formatZip
)

var suffixes = []struct {
	suffix string
	format format
}{
	{".tar.gz", formatTarGzip},
	{".tgz", formatTarGzip},
	{".tar.bz2", formatTarBzip2},
	{".tbz2", formatTarBzip2},
	{".tar.xz", formatTarXz},
	{".txz", formatTarXz},
	{".tar.zst", formatTarZstd},
	{".tzst", formatTarZstd},
	{".tar", formatTar},
	{".zip", formatZip},
}

func detect(name string) format {
	name = strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(name, s.suffix) {
			return s.format
		}
	}
	return formatUnknown
}

// Extractor unpacks tar (plain, gzip, bzip2, xz, zstd) and zip archives.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks archive into dest, replacing whatever dest held.
// When the archive holds a single top-level directory its contents become dest.
func (e *Extractor) Extract(ctx context.Context, archive, dest string) error {
	f := detect(archive)
	if f == formatUnknown {
		return zerr.With(zerr.Wrap(domain.ErrExtractFailed, "unsupported archive format"), "archive", archive)
	}

	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create source directory")
	}
	staging, err := os.MkdirTemp(parent, ".extract-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create staging directory")
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if f == formatZip {
		err = extractZip(ctx, archive, staging)
	} else {
		err = extractTarFile(ctx, archive, f, staging)
	}
	if err != nil {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrExtractFailed, err.Error()), "archive", archive), "dest", dest)
	}

	root := staging
	entries, err := os.ReadDir(staging)
	if err != nil {
		return zerr.Wrap(err, "failed to read staging directory")
	}
	if len(entries) == 1 && entries[0].IsDir() {
		root = filepath.Join(staging, entries[0].Name())
	}

	if err := os.RemoveAll(dest); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to clear source directory"), "dest", dest)
	}
	if err := os.Rename(root, dest); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to move extracted tree"), "dest", dest)
	}
	return nil
}

func extractTarFile(ctx context.Context, archive string, f format, dest string) error {
	file, err := os.Open(archive) //nolint:gosec // archive paths come from the download cache
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	switch f {
	case formatTarGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			return err
		}
		defer func() { _ = gz.Close() }()
		r = gz
	case formatTarBzip2:
		r = bzip2.NewReader(file)
	case formatTarXz:
		xr, err := xz.NewReader(file)
		if err != nil {
			return err
		}
		r = xr
	case formatTarZstd:
		zr, err := zstd.NewReader(file)
		if err != nil {
			return err
		}
		defer zr.Close()
		r = zr
	}
	return extractTar(ctx, tar.NewReader(r), dest)
}

func extractTar(ctx context.Context, tr *tar.Reader, dest string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeXGlobalHeader, tar.TypeXHeader:
			continue
		}

		target, err := within(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := symlink(dest, target, hdr.Linkname); err != nil {
				return err
			}
		case tar.TypeLink:
			src, err := within(dest, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return err
			}
			if err := os.Link(src, target); err != nil {
				return err
			}
		}
	}
}

func extractZip(ctx context.Context, archive, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer func() { _ = zr.Close() }()

	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := within(dest, zf.Name)
		if err != nil {
			return err
		}
		mode := zf.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o750); err != nil {
				return err
			}
		case mode&os.ModeSymlink != 0:
			rc, err := zf.Open()
			if err != nil {
				return err
			}
			link, err := io.ReadAll(rc)
			_ = rc.Close()
			if err != nil {
				return err
			}
			if err := symlink(dest, target, string(link)); err != nil {
				return err
			}
		default:
			rc, err := zf.Open()
			if err != nil {
				return err
			}
			err = writeFile(target, rc, mode)
			_ = rc.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// within resolves name below root and rejects entries escaping it.
func within(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", zerr.With(zerr.New("archive entry escapes the destination"), "entry", name)
	}
	return target, nil
}

func symlink(root, target, link string) error {
	if filepath.IsAbs(link) {
		return zerr.With(zerr.New("archive symlink is absolute"), "link", link)
	}
	if _, err := within(root, mustRel(root, filepath.Join(filepath.Dir(target), link))); err != nil {
		return zerr.With(zerr.New("archive symlink escapes the destination"), "link", link)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}
	return os.Symlink(link, target)
}

func mustRel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ".."
	}
	return filepath.ToSlash(rel)
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}
	perm := mode.Perm() | 0o600
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // preserves archive permissions
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil { //nolint:gosec // archives come from checksum-verified downloads
		_ = out.Close()
		return err
	}
	return out.Close()
}
