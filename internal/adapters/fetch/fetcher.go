// Package fetch downloads and verifies source archives.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-retryablehttp"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Fetcher implements ports.Fetcher over a retrying HTTP client.
type Fetcher struct {
	logger       ports.Logger
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

var _ ports.Fetcher = (*Fetcher)(nil)

// NewFetcher creates a new Fetcher.
func NewFetcher(log ports.Logger) *Fetcher {
	return &Fetcher{
		logger:       log,
		retryWaitMin: time.Second,
		retryWaitMax: 30 * time.Second,
	}
}

// Fetch downloads src.URL into dir unless a copy matching src.Checksum is already there.
//
// The body is streamed into a temporary file next to the destination and only renamed into
// place once the checksum matches, so dir never holds an unverified archive under its final name.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source, dir string, opts domain.FetchSettings) (string, error) {
	if src.URL == "" {
		return "", zerr.Wrap(domain.ErrFetchFailed, "source has no url")
	}
	// Reject malformed checksums before touching the network.
	if _, err := newChecker(src.Checksum); err != nil {
		return "", err
	}

	dest := filepath.Join(dir, src.Filename())

	ok, err := verifyFile(dest, src.Checksum)
	switch {
	case err != nil:
		return "", err
	case ok:
		f.logger.Info("using cached " + src.Filename())
		return dest, nil
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create download directory"), "path", dir)
	}

	size, err := f.download(ctx, src, dest, opts)
	if err != nil {
		return "", err
	}
	f.logger.Info(fmt.Sprintf("fetched %s (%s)", src.Filename(), humanize.Bytes(uint64(size)))) //nolint:gosec // size is non-negative
	return dest, nil
}

func (f *Fetcher) client(opts domain.FetchSettings) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = opts.Retries
	c.RetryWaitMin = f.retryWaitMin
	c.RetryWaitMax = f.retryWaitMax
	c.Logger = logger.HTTPLogger{Logger: f.logger}
	if opts.Timeout > 0 {
		c.HTTPClient.Timeout = opts.Timeout
	}
	return c
}

func (f *Fetcher) download(ctx context.Context, src domain.Source, dest string, opts domain.FetchSettings) (int64, error) {
	fail := func(err error, msg string) error {
		return zerr.With(zerr.Wrap(err, msg), "url", src.URL)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return 0, fail(domain.ErrFetchFailed, err.Error())
	}

	resp, err := f.client(opts).Do(req)
	if err != nil {
		return 0, fail(domain.ErrFetchFailed, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, zerr.With(fail(domain.ErrFetchFailed, "unexpected response status"), "status", resp.StatusCode)
	}

	check, err := newChecker(src.Checksum)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".part-*")
	if err != nil {
		return 0, fail(err, "failed to create download file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(io.MultiWriter(tmp, check), resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fail(domain.ErrFetchFailed, "download interrupted: "+err.Error())
	}

	if err := check.Check(); err != nil {
		mismatch := zerr.With(fail(domain.ErrChecksumMismatch, "downloaded file does not match its checksum"), "expected", src.Checksum)
		var zErr *zerr.Error
		if errors.As(err, &zErr) {
			if actual, ok := zErr.Metadata()["actual"]; ok {
				mismatch = zerr.With(mismatch, "actual", actual)
			}
		}
		return 0, mismatch
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, fail(err, "failed to move download into place")
	}
	return size, nil
}

// verifyFile reports whether path exists and matches checksum.
// A stale file with a different digest is removed so it is downloaded again.
func verifyFile(path, checksum string) (bool, error) {
	file, err := os.Open(path) //nolint:gosec // path is derived from the download directory
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, "failed to open cached download"), "path", path)
	}
	defer func() { _ = file.Close() }()

	check, err := newChecker(checksum)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(check, file); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to read cached download"), "path", path)
	}
	if check.Check() == nil {
		return true, nil
	}

	_ = file.Close()
	if err := os.Remove(path); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to remove stale download"), "path", path)
	}
	return false, nil
}
