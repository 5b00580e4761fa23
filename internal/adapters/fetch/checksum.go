package fetch

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"strings"

	"github.com/peterebden/go-sri"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// checker accumulates content and compares its digest with the expected checksum.
type checker interface {
	io.Writer
	Check() error
}

// newChecker accepts a hex encoded sha256/sha512 digest or a subresource integrity string
// such as "sha256-<base64>".
func newChecker(checksum string) (checker, error) {
	checksum = strings.TrimSpace(checksum)
	if isSRI(checksum) {
		c, err := sri.NewChecker(checksum)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidTarget, "malformed integrity string"), "checksum", checksum)
		}
		return &sriChecker{write: func(p []byte) { c.Write(p) }, check: c.Check}, nil
	}

	want, err := hex.DecodeString(strings.ToLower(checksum))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidTarget, "checksum is neither hex nor an integrity string"), "checksum", checksum)
	}

	switch len(want) {
	case sha256.Size:
		return &hexChecker{h: sha256.New(), want: want}, nil
	case sha512.Size:
		return &hexChecker{h: sha512.New(), want: want}, nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidTarget, "unsupported checksum length"), "checksum", checksum)
	}
}

func isSRI(s string) bool {
	for _, prefix := range []string{"sha256-", "sha384-", "sha512-"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

type sriChecker struct {
	write func([]byte)
	check func() error
}

func (c *sriChecker) Write(p []byte) (int, error) {
	c.write(p)
	return len(p), nil
}

func (c *sriChecker) Check() error {
	return c.check()
}

type hexChecker struct {
	h    hash.Hash
	want []byte
}

func (c *hexChecker) Write(p []byte) (int, error) {
	return c.h.Write(p)
}

func (c *hexChecker) Check() error {
	got := c.h.Sum(nil)
	if bytes.Equal(got, c.want) {
		return nil
	}
	return zerr.With(zerr.New("digest differs"), "actual", hex.EncodeToString(got))
}
