package buildsys_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/buildsys"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// recorder captures the commands passed to a mock executor.
type recorder struct {
	commands []*domain.Command
}

func (r *recorder) expect(m *mocks.MockExecutor) {
	m.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *domain.Command) error {
		r.commands = append(r.commands, c)
		return nil
	}).AnyTimes()
}

func (r *recorder) argv() [][]string {
	out := make([][]string, len(r.commands))
	for i, c := range r.commands {
		out[i] = c.Argv()
	}
	return out
}

func newState(t *testing.T, kind domain.Kind) *domain.BuildState {
	t.Helper()
	root := t.TempDir()
	return &domain.BuildState{
		Target:      &domain.Target{Name: domain.NewInternedString("usb"), Kind: kind},
		Arch:        domain.ArchArm64,
		SourceDir:   filepath.Join(root, "src", "usb"),
		BuildDir:    filepath.Join(root, "build", "usb", "arm64"),
		InstallDir:  filepath.Join(root, "prefix"),
		Options:     domain.NewOptions(),
		Environment: map[string]string{"CFLAGS": "-O2"},
		Jobs:        8,
	}
}

func TestRegistry_For(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := buildsys.NewRegistry(mocks.NewMockExecutor(ctrl), mocks.NewMockWalker(ctrl), mocks.NewMockLogger(ctrl))

	tests := []struct {
		kind domain.Kind
		want any
	}{
		{domain.KindManual, &buildsys.Manual{}},
		{domain.KindConfigureMakeStatic, &buildsys.Autotools{}},
		{domain.KindConfigureMake, &buildsys.Autotools{}},
		{domain.KindCMakeShared, &buildsys.CMake{}},
		{domain.KindMeson, &buildsys.Meson{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			bs, err := r.For(tt.kind)
			require.NoError(t, err)
			assert.IsType(t, tt.want, bs)
		})
	}

	_, err := r.For("scons")
	require.ErrorIs(t, err, domain.ErrUnsupportedKind)
	_, err = r.For("cmake-dynamic")
	require.ErrorIs(t, err, domain.ErrUnsupportedKind)
}

func TestAutotools_Configure(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	rec := &recorder{}
	rec.expect(exec)

	state := newState(t, domain.KindConfigureMakeStatic)
	require.NoError(t, os.MkdirAll(state.SourceDir, 0o750))
	require.NoError(t, os.WriteFile(state.SourcePath("configure"), []byte("#!/bin/sh\n"), 0o600))
	state.Options.SetFlag("--with-pic")
	state.Options.Set("LIBS", "-lpthread")
	state.Target.ExtraArgs = `--with-udev-dir='/opt/udev rules'`

	a := buildsys.NewAutotools(exec, mocks.NewMockWalker(ctrl), mocks.NewMockLogger(ctrl))
	require.NoError(t, a.Configure(context.Background(), state))

	require.Len(t, rec.commands, 1)
	cmd := rec.commands[0]
	assert.Equal(t, state.BuildDir, cmd.Dir)
	assert.Equal(t, []string{"CFLAGS=-O2"}, cmd.Env)
	assert.Equal(t, []string{
		state.SourcePath("configure"),
		"--prefix=" + state.InstallDir,
		"--enable-static",
		"--disable-shared",
		"--with-pic",
		"LIBS=-lpthread",
		"--with-udev-dir=/opt/udev rules",
	}, cmd.Argv())
	assert.DirExists(t, state.BuildDir)
	assert.NoFileExists(t, filepath.Join(state.SourceDir, "config.status"))
}

func TestAutotools_ConfigureTargetOverridesPrefix(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	rec := &recorder{}
	rec.expect(exec)

	state := newState(t, domain.KindConfigureMake)
	require.NoError(t, os.MkdirAll(state.SourceDir, 0o750))
	require.NoError(t, os.WriteFile(state.SourcePath("configure"), nil, 0o600))
	state.Options.Set("--prefix", "/usr/local")

	a := buildsys.NewAutotools(exec, mocks.NewMockWalker(ctrl), mocks.NewMockLogger(ctrl))
	require.NoError(t, a.Configure(context.Background(), state))

	assert.Equal(t, []string{state.SourcePath("configure"), "--prefix=/usr/local"}, rec.commands[0].Argv())
}

func TestAutotools_ConfigureWithoutScript(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := buildsys.NewAutotools(mocks.NewMockExecutor(ctrl), mocks.NewMockWalker(ctrl), mocks.NewMockLogger(ctrl))

	err := a.Configure(context.Background(), newState(t, domain.KindConfigureMake))
	require.ErrorIs(t, err, domain.ErrArtifactMissing)
}

func TestAutotools_BuildAndInstallPrunesStaticArchives(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	walker := mocks.NewMockWalker(ctrl)
	log := mocks.NewMockLogger(ctrl)
	rec := &recorder{}
	rec.expect(exec)

	state := newState(t, domain.KindConfigureMakeShared)
	for _, f := range []string{"lib/libold.a", "lib/libusb-1.0.a", "lib/libusb-1.0.so", "include/libusb.h"} {
		path := state.InstallPath(f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, nil, 0o600))
	}

	gomock.InOrder(
		walker.EXPECT().Files(state.InstallDir).Return([]string{"lib/libold.a"}, nil),
		walker.EXPECT().Files(state.InstallDir).Return([]string{
			"include/libusb.h", "lib/libold.a", "lib/libusb-1.0.a", "lib/libusb-1.0.so",
		}, nil),
	)
	log.EXPECT().Info("usb@arm64: removed 1 libraries excluded by configure-make-shared")

	a := buildsys.NewAutotools(exec, walker, log)
	require.NoError(t, a.Build(context.Background(), state))
	require.NoError(t, a.Install(context.Background(), state))

	assert.Equal(t, [][]string{{"make", "-j8"}, {"make", "install"}}, rec.argv())
	assert.NoFileExists(t, state.InstallPath("lib/libusb-1.0.a"))
	assert.FileExists(t, state.InstallPath("lib/libold.a"), "libraries of earlier targets are kept")
	assert.FileExists(t, state.InstallPath("lib/libusb-1.0.so"))
}

func TestAutotools_InstallDefaultLinkageKeepsEverything(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	rec := &recorder{}
	rec.expect(exec)

	// Nothing is excluded, so the install directory is never walked.
	a := buildsys.NewAutotools(exec, mocks.NewMockWalker(ctrl), mocks.NewMockLogger(ctrl))
	require.NoError(t, a.Install(context.Background(), newState(t, domain.KindConfigureMake)))
}

func TestCMake_Configure(t *testing.T) {
	tests := []struct {
		name   string
		goos   string
		kind   domain.Kind
		mutate func(*domain.BuildState)
		want   func(s *domain.BuildState) []string
	}{
		{
			name: "static on linux",
			goos: "linux",
			kind: domain.KindCMakeStatic,
			mutate: func(s *domain.BuildState) {
				s.Options.Set("BUILD_TESTS", "NO")
			},
			want: func(s *domain.BuildState) []string {
				return []string{
					"cmake", "-S", s.SourceDir, "-B", s.BuildDir,
					"-DCMAKE_INSTALL_PREFIX=" + s.InstallDir,
					"-DCMAKE_BUILD_TYPE=Release",
					"-DBUILD_SHARED_LIBS=OFF",
					"-DBUILD_TESTS=NO",
				}
			},
		},
		{
			name: "shared with generator on darwin",
			goos: "darwin",
			kind: domain.KindCMakeShared,
			mutate: func(s *domain.BuildState) {
				s.Target.Generator = "Ninja"
				s.DeploymentTarget = "11.0"
				s.Options.Set("CMAKE_BUILD_TYPE", "RelWithDebInfo")
				s.Options.SetFlag("ENABLE_FLOAT")
			},
			want: func(s *domain.BuildState) []string {
				return []string{
					"cmake", "-S", s.SourceDir, "-B", s.BuildDir, "-G", "Ninja",
					"-DCMAKE_INSTALL_PREFIX=" + s.InstallDir,
					"-DCMAKE_BUILD_TYPE=RelWithDebInfo",
					"-DBUILD_SHARED_LIBS=ON",
					"-DCMAKE_OSX_ARCHITECTURES=arm64",
					"-DCMAKE_OSX_DEPLOYMENT_TARGET=11.0",
					"-DENABLE_FLOAT=ON",
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			exec := mocks.NewMockExecutor(ctrl)
			rec := &recorder{}
			rec.expect(exec)

			state := newState(t, tt.kind)
			tt.mutate(state)

			walker := mocks.NewMockWalker(ctrl)
			walker.EXPECT().Files(state.InstallDir).Return(nil, nil).Times(2)

			c := buildsys.NewCMake(tt.goos, exec, walker, mocks.NewMockLogger(ctrl))
			require.NoError(t, c.Configure(context.Background(), state))
			require.NoError(t, c.Build(context.Background(), state))
			require.NoError(t, c.Install(context.Background(), state))

			assert.Equal(t, [][]string{
				tt.want(state),
				{"cmake", "--build", state.BuildDir, "--parallel", "8"},
				{"cmake", "--install", state.BuildDir},
			}, rec.argv())
		})
	}
}

func TestCMake_InstallPrunesSharedLibraries(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	walker := mocks.NewMockWalker(ctrl)
	log := mocks.NewMockLogger(ctrl)
	rec := &recorder{}
	rec.expect(exec)

	state := newState(t, domain.KindCMakeStatic)
	for _, f := range []string{"lib/libfftw3f.a", "lib/libfftw3f.so.3", "lib/cmake/fftw3f/config.cmake"} {
		path := state.InstallPath(f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, nil, 0o600))
	}

	gomock.InOrder(
		walker.EXPECT().Files(state.InstallDir).Return(nil, nil),
		walker.EXPECT().Files(state.InstallDir).Return([]string{
			"lib/cmake/fftw3f/config.cmake", "lib/libfftw3f.a", "lib/libfftw3f.so.3",
		}, nil),
	)
	log.EXPECT().Info("usb@arm64: removed 1 libraries excluded by cmake-static")

	c := buildsys.NewCMake("linux", exec, walker, log)
	require.NoError(t, c.Install(context.Background(), state))

	assert.Equal(t, [][]string{{"cmake", "--install", state.BuildDir}}, rec.argv())
	assert.NoFileExists(t, state.InstallPath("lib/libfftw3f.so.3"))
	assert.FileExists(t, state.InstallPath("lib/libfftw3f.a"))
	assert.FileExists(t, state.InstallPath("lib/cmake/fftw3f/config.cmake"))
}

func TestMeson_SharedDefaultIsSilent(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	rec := &recorder{}
	rec.expect(exec)

	state := newState(t, domain.KindMeson)
	state.Options.Set("default_library", "shared")

	// The logger has no expectations: a warning fails the test.
	m := buildsys.NewMeson(exec, mocks.NewMockLogger(ctrl))
	require.NoError(t, m.Configure(context.Background(), state))
	assert.Contains(t, rec.argv()[0], "-Ddefault_library=shared")
}

func TestMeson_AlwaysShared(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	rec := &recorder{}
	rec.expect(exec)

	state := newState(t, domain.KindMeson)
	state.Options.Set("default_library", "static")
	state.Options.SetFlag("tests")
	state.Jobs = 0

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn("usb@arm64: meson targets build shared libraries only, ignoring default_library=static")

	m := buildsys.NewMeson(exec, log)
	require.NoError(t, m.Configure(context.Background(), state))
	require.NoError(t, m.Build(context.Background(), state))
	require.NoError(t, m.Install(context.Background(), state))

	assert.Equal(t, [][]string{
		{
			"meson", "setup", state.BuildDir, state.SourceDir,
			"-Dprefix=" + state.InstallDir,
			"-Dbuildtype=release",
			"-Ddefault_library=shared",
			"-Dtests=true",
		},
		{"meson", "compile", "-C", state.BuildDir, "-j", "1"},
		{"meson", "install", "-C", state.BuildDir},
	}, rec.argv())
}

func TestManual_ExpandsVariables(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	rec := &recorder{}
	rec.expect(exec)

	state := newState(t, domain.KindManual)
	state.Target.Commands = domain.Commands{
		Build:   []string{`make -C ${source} -j${jobs} ARCH=${arch}`, ""},
		Install: []string{`install -m 644 "${build}/fobos.h" ${prefix}/include/fobos.h`},
	}

	m := buildsys.NewManual(exec)
	require.NoError(t, m.Configure(context.Background(), state))
	require.NoError(t, m.Build(context.Background(), state))
	require.NoError(t, m.Install(context.Background(), state))

	assert.Equal(t, [][]string{
		{"make", "-C", state.SourceDir, "-j8", "ARCH=arm64"},
		{"install", "-m", "644", state.BuildDir + "/fobos.h", state.InstallDir + "/include/fobos.h"},
	}, rec.argv())
	assert.DirExists(t, state.InstallDir)
}

func TestManual_StopsAtFirstFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	exec.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(domain.ErrToolFailed)

	state := newState(t, domain.KindManual)
	state.Target.Commands.Build = []string{"false", "true"}

	err := buildsys.NewManual(exec).Build(context.Background(), state)
	require.ErrorIs(t, err, domain.ErrToolFailed)
}
