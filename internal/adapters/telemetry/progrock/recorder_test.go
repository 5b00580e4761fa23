package progrock_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/telemetry/progrock"
	"go.trai.ch/kiln/internal/core/ports"
)

func TestRecorder_Record(t *testing.T) {
	rec := progrock.New()

	ctx, v := rec.Record(context.Background(), "usb@x86_64")
	require.NotNil(t, v)

	fromCtx, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, v, fromCtx)

	_, err := fmt.Fprintln(v.Stdout(), "checking for gcc... gcc")
	require.NoError(t, err)
	_, err = fmt.Fprintln(v.Stderr(), "warning: unused variable")
	require.NoError(t, err)
	v.Complete(nil)

	_, cached := rec.Record(context.Background(), "zstd@x86_64")
	cached.Cached()
	cached.Complete(nil)

	_, failed := rec.Record(context.Background(), "bladerf@x86_64")
	failed.Complete(errors.New("boom"))

	require.NoError(t, rec.Close())
}

func TestRecorder_Journal(t *testing.T) {
	rec := progrock.New()
	first := filepath.Join(t.TempDir(), "runs", "run-1.json")
	second := filepath.Join(filepath.Dir(first), "run-2.json")

	require.NoError(t, rec.Journal(first))
	_, v := rec.Record(context.Background(), "usb@x86_64")
	v.Complete(nil)

	require.NoError(t, rec.Journal(second))
	_, failed := rec.Record(context.Background(), "bladerf@arm64")
	failed.Complete(errors.New("boom"))
	require.NoError(t, rec.Close())

	firstLines := journalLines(t, first)
	secondLines := journalLines(t, second)
	assert.True(t, containsLine(firstLines, "usb@x86_64"))
	assert.False(t, containsLine(firstLines, "bladerf@arm64"), "a replaced journal stops receiving updates")
	assert.True(t, containsLine(secondLines, "bladerf@arm64"))
	assert.True(t, containsLine(secondLines, "boom"))
}

func TestRecorder_JournalUnwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "runs")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	rec := progrock.New()
	require.Error(t, rec.Journal(filepath.Join(blocker, "run-1.json")))

	_, v := rec.Record(context.Background(), "usb@x86_64")
	v.Complete(nil)
	require.NoError(t, rec.Close())
}

// journalLines reads a journal and checks that every line is a JSON document.
func journalLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		require.True(t, json.Valid([]byte(line)), line)
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	require.NotEmpty(t, lines)
	return lines
}

func containsLine(lines []string, s string) bool {
	for _, l := range lines {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}
