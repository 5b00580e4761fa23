package shell_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func TestExecutor_Execute_LogsCommandAndLines(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	gomock.InOrder(
		mockLogger.EXPECT().Info("$ sh -c 'echo line1; echo line2'"),
		mockLogger.EXPECT().Info("line1"),
		mockLogger.EXPECT().Info("line2"),
	)

	executor := shell.NewExecutor(mockLogger)
	cmd := domain.NewCommand(t.TempDir(), nil, "sh", "-c", "echo line1; echo line2")

	require.NoError(t, executor.Execute(context.Background(), cmd))
}

func TestExecutor_Execute_FragmentedOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	mockLogger.EXPECT().Info(gomock.Any()).Times(1)
	mockLogger.EXPECT().Info("part1part2").Times(1)
	mockLogger.EXPECT().Info("no newline").Times(1)

	executor := shell.NewExecutor(mockLogger)
	cmd := domain.NewCommand(t.TempDir(), nil, "sh", "-c",
		"printf part1; sleep 0.1; printf 'part2\\n'; printf 'no newline'")

	require.NoError(t, executor.Execute(context.Background(), cmd))
}

func TestExecutor_Execute_StderrIsWarning(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	mockLogger.EXPECT().Info(gomock.Any()).Times(1)
	mockLogger.EXPECT().Warn("careful").Times(1)

	executor := shell.NewExecutor(mockLogger)
	cmd := domain.NewCommand(t.TempDir(), nil, "sh", "-c", "echo careful >&2")

	require.NoError(t, executor.Execute(context.Background(), cmd))
}

func TestExecutor_Execute_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	executor := shell.NewExecutor(mockLogger)
	dir := t.TempDir()
	cmd := domain.NewCommand(dir, nil, "sh", "-c", "echo compiling; echo 'fatal: no compiler' >&2; exit 3")

	err := executor.Execute(context.Background(), cmd)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrToolFailed)
	assert.Contains(t, err.Error(), "sh exited with code 3")

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	meta := zErr.Metadata()
	assert.Equal(t, 3, meta["exit_code"])
	assert.Equal(t, dir, meta["dir"])
	assert.Contains(t, meta["output_tail"], "compiling")
	assert.Contains(t, meta["output_tail"], "fatal: no compiler")
}

func TestExecutor_Execute_EnvironmentAndDir(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()

	executor := shell.NewExecutor(mockLogger)
	dir := t.TempDir()
	cmd := domain.NewCommand(dir, []string{"KILN_TEST_VALUE=from-overlay"},
		"sh", "-c", `printf '%s' "$KILN_TEST_VALUE" > out.txt`)

	require.NoError(t, executor.Execute(context.Background(), cmd))

	got, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "from-overlay", string(got))
}

func TestExecutor_Execute_ResolvesFromOverlayPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("$ kiln-test-tool").Times(1)
	mockLogger.EXPECT().Info("hermetic").Times(1)

	binDir := t.TempDir()
	//nolint:gosec // test requires an executable file
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "kiln-test-tool"), []byte("#!/bin/sh\necho hermetic\n"), 0o700))

	executor := shell.NewExecutor(mockLogger)
	cmd := domain.NewCommand(t.TempDir(), []string{"PATH=" + binDir}, "kiln-test-tool")

	require.NoError(t, executor.Execute(context.Background(), cmd))
}

func TestExecutor_Execute_MirrorsToVertex(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	var stdoutBuf, stderrBuf bytes.Buffer
	mockVertex := mocks.NewMockVertex(ctrl)
	mockVertex.EXPECT().Stdout().Return(&stdoutBuf).AnyTimes()
	mockVertex.EXPECT().Stderr().Return(&stderrBuf).AnyTimes()

	executor := shell.NewExecutor(mockLogger)
	cmd := domain.NewCommand(t.TempDir(), nil, "sh", "-c", "echo to stdout; echo to stderr >&2")

	ctx := ports.ContextWithVertex(context.Background(), mockVertex)
	require.NoError(t, executor.Execute(ctx, cmd))

	assert.Contains(t, stdoutBuf.String(), "to stdout")
	assert.Contains(t, stderrBuf.String(), "to stderr")
}

func TestExecutor_Execute_Canceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executor := shell.NewExecutor(mockLogger)
	err := executor.Execute(ctx, domain.NewCommand(t.TempDir(), nil, "sh", "-c", "sleep 5"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecutor_Execute_EmptyCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := shell.NewExecutor(mocks.NewMockLogger(ctrl))

	require.NoError(t, executor.Execute(context.Background(), &domain.Command{}))
	require.NoError(t, executor.Execute(context.Background(), nil))
}
