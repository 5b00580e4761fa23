package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/cmd/kiln/commands"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/driver"
	"go.uber.org/mock/gomock"
)

type env struct {
	cli      *commands.CLI
	out      *bytes.Buffer
	logs     *bytes.Buffer
	loader   *mocks.MockCatalogLoader
	fetcher  *mocks.MockFetcher
	settings domain.Settings
}

func setup(t *testing.T) *env {
	t.Helper()
	ctrl := gomock.NewController(t)
	root := t.TempDir()

	e := &env{
		out:     &bytes.Buffer{},
		logs:    &bytes.Buffer{},
		loader:  mocks.NewMockCatalogLoader(ctrl),
		fetcher: mocks.NewMockFetcher(ctrl),
		settings: domain.Settings{
			Prefix:        filepath.Join(root, "prefix"),
			WorkDir:       filepath.Join(root, "work"),
			PatchDir:      filepath.Join(root, "patches"),
			Jobs:          1,
			Architectures: []domain.Architecture{domain.ArchX86_64, domain.ArchArm64},
		},
	}

	gmp := &domain.Target{Name: domain.NewInternedString("gmp"), Version: "6.3.0", Kind: domain.KindConfigureMakeStatic}
	binutils := &domain.Target{
		Name:          domain.NewInternedString("binutils"),
		Version:       "2.42",
		Kind:          domain.KindConfigureMake,
		Prerequisites: domain.NewInternedStrings("gmp"),
	}
	usb := &domain.Target{Name: domain.NewInternedString("usb"), Version: "1.0.28", Kind: domain.KindConfigureMakeShared, MultiPlatform: true}
	catalog := domain.NewCatalog()
	for _, tgt := range []*domain.Target{gmp, binutils, usb} {
		require.NoError(t, catalog.Add(tgt))
	}
	e.loader.EXPECT().Load(gomock.Any()).Return(catalog, e.settings, nil).AnyTimes()

	telemetry := mocks.NewMockTelemetry(ctrl)
	telemetry.EXPECT().Close().Return(nil).AnyTimes()

	log := logger.NewWithOutput(e.logs)
	a := app.New(e.loader, driver.New(driver.Services{}), e.fetcher, telemetry, log)

	e.cli = commands.New(a, log)
	e.cli.SetOutput(e.out)
	return e
}

func (e *env) run(args ...string) error {
	e.cli.SetArgs(args)
	return e.cli.Execute(context.Background())
}

func TestPlan(t *testing.T) {
	e := setup(t)
	require.NoError(t, e.run("plan", "binutils", "usb", "--arch", "all"))

	primary := string(domain.PrimaryArchitecture(e.settings.Architectures))
	lines := bytes.Split(bytes.TrimSpace(e.out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"1", "gmp", "6.3.0", "configure-make-static", primary, "shared"}, fields(lines[0]))
	assert.Equal(t, []string{"2", "binutils", "2.42", "configure-make", primary, "shared"}, fields(lines[1]))
	assert.Equal(t, []string{"3", "usb", "1.0.28", "configure-make-shared", "x86_64,arm64", "per-arch"}, fields(lines[2]))
}

func TestPlan_UnknownTarget(t *testing.T) {
	e := setup(t)
	err := e.run("plan", "nope")
	require.ErrorIs(t, err, domain.ErrUnknownTarget)
	assert.Empty(t, e.out.String())
}

func TestList(t *testing.T) {
	e := setup(t)
	require.NoError(t, e.run("list"))

	lines := bytes.Split(bytes.TrimSpace(e.out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"binutils", "2.42", "configure-make", "gmp"}, fields(lines[0]))
	assert.Equal(t, []string{"gmp", "6.3.0", "configure-make-static"}, fields(lines[1]))
}

func TestBuild_NoTargetsShowsHelp(t *testing.T) {
	e := setup(t)
	require.NoError(t, e.run("build"))
	assert.Contains(t, e.out.String(), "build [targets...]")
}

func TestBuild_RejectsBadOverride(t *testing.T) {
	e := setup(t)
	err := e.run("build", "usb", "-D", "novalue")
	require.ErrorIs(t, err, domain.ErrInvalidOverride)
}

func TestFetch_SkipsTargetsWithoutArchives(t *testing.T) {
	e := setup(t)
	// None of the catalog targets has an archive.
	require.NoError(t, e.run("fetch"))
	assert.Contains(t, e.logs.String(), "fetched 0 archives")
}

func TestClean_All(t *testing.T) {
	e := setup(t)
	require.NoError(t, os.MkdirAll(filepath.Join(e.settings.WorkDir, "src"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(e.settings.WorkDir, "build"), 0o750))

	require.NoError(t, e.run("clean", "--all"))
	assert.NoDirExists(t, filepath.Join(e.settings.WorkDir, "src"))
	assert.NoDirExists(t, filepath.Join(e.settings.WorkDir, "build"))
}

func TestJSONLogs(t *testing.T) {
	e := setup(t)
	require.NoError(t, e.run("fetch", "--json-logs"))
	assert.Contains(t, e.logs.String(), `"msg":"fetched 0 archives`)
}

func TestVersion(t *testing.T) {
	e := setup(t)
	require.NoError(t, e.run("version"))
	assert.Equal(t, "kiln version dev\n", e.out.String())
}

func fields(line []byte) []string {
	var out []string
	for _, f := range bytes.Fields(line) {
		out = append(out, string(f))
	}
	return out
}
