package rewrite_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/rewrite"
	"go.trai.ch/kiln/internal/core/domain"
)

const fftwConfig = `set (FFTW3f_LIBRARIES fftw3f)
set (FFTW3f_LIBRARY_DIRS /home/ci/prefix/lib)
set (FFTW3f_INCLUDE_DIRS /home/ci/prefix/include)
include ("${CMAKE_CURRENT_LIST_DIR}/FFTW3fLibraryDepends.cmake")
`

const libusbPC = `prefix=@PREFIX@
exec_prefix=${prefix}
libdir=@PREFIX@/lib
includedir=@PREFIX@/include

Name: libusb-1.0
Description: C API for USB device access
Version: 1.0.28
Libs: -L${libdir} -lusb-1.0
Cflags: -I${includedir}/libusb-1.0
`

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRewriter_RewriteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib", "cmake", "fftw3f", "FFTW3fConfig.cmake")
	write(t, path, fftwConfig)

	err := rewrite.NewRewriter().RewriteLines(path, []domain.LineReplacement{
		{Prefix: "set (FFTW3f_LIBRARY_DIRS ", Replacement: `"${CMAKE_CURRENT_LIST_DIR}/../..")`},
		{Prefix: "set (FFTW3f_INCLUDE_DIRS ", Replacement: `"${CMAKE_CURRENT_LIST_DIR}/../../../include")`},
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "fftw_config", got)
}

func TestRewriter_RewriteLines_Missing(t *testing.T) {
	err := rewrite.NewRewriter().RewriteLines(filepath.Join(t.TempDir(), "nope.cmake"), nil)
	require.ErrorIs(t, err, domain.ErrArtifactMissing)
}

func TestRewriter_RelocatePkgConfig(t *testing.T) {
	install := t.TempDir()
	abs, err := filepath.Abs(install)
	require.NoError(t, err)

	write(t, filepath.Join(install, "lib", "pkgconfig", "libusb-1.0.pc"), strings.ReplaceAll(libusbPC, "@PREFIX@", abs))
	write(t, filepath.Join(install, "share", "pkgconfig", "relocated.pc"), "prefix="+rewrite.RelocatedPrefix+"\n")
	write(t, filepath.Join(install, "lib", "pkgconfig", "README"), "prefix=/somewhere\n")

	n, err := rewrite.NewRewriter().RelocatePkgConfig(install)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "files already relocated are not counted")

	got, err := os.ReadFile(filepath.Join(install, "lib", "pkgconfig", "libusb-1.0.pc"))
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "libusb_pc", got)

	readme, err := os.ReadFile(filepath.Join(install, "lib", "pkgconfig", "README"))
	require.NoError(t, err)
	assert.Equal(t, "prefix=/somewhere\n", string(readme))
}

func TestRewriter_RelocatePkgConfig_NoPkgConfigDir(t *testing.T) {
	n, err := rewrite.NewRewriter().RelocatePkgConfig(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, n)
}
