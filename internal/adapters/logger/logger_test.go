package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestLogger_PrettyOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	l := logger.NewWithOutput(buf)

	l.Info("configuring usb@x86_64")
	l.Warn("patch applied with offset")
	l.Success("usb@x86_64 installed")

	g := goldie.New(t)
	g.Assert(t, "pretty_output", buf.Bytes())
}

func TestLogger_ErrorChain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	l := logger.NewWithOutput(buf)

	err := zerr.Wrap(zerr.New("exit status 2"), "build tool failed")
	err = zerr.With(err, "exit_code", 2)
	err = zerr.With(zerr.Wrap(err, "build failed"), "target", "usb")
	l.Error(err)

	g := goldie.New(t)
	g.Assert(t, "error_chain", buf.Bytes())
}

func TestLogger_NilErrorIsIgnored(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logger.NewWithOutput(buf)
	l.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logger.NewWithOutput(buf)
	l.SetJSON(true)

	l.Info("hello")
	l.Error(errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, `"level":"INFO"`)
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestLogger_SetOutputKeepsFormat(t *testing.T) {
	first := &bytes.Buffer{}
	second := &bytes.Buffer{}

	l := logger.NewWithOutput(first)
	l.SetJSON(true)
	l.SetOutput(second)
	l.Info("moved")

	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), `"msg":"moved"`)
}

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantMessages []string
		wantMetadata []map[string]any
	}{
		{
			name:         "standard error",
			err:          errors.New("plain"),
			wantMessages: []string{"plain"},
			wantMetadata: []map[string]any{nil},
		},
		{
			name:         "zerr chain",
			err:          zerr.Wrap(zerr.Wrap(errors.New("root"), "middle"), "outer"),
			wantMessages: []string{"outer", "middle", "root"},
			wantMetadata: []map[string]any{{}, {}, nil},
		},
		{
			name:         "metadata only link attaches to the next message",
			err:          zerr.With(errors.New("plain"), "url", "https://example.com"),
			wantMessages: []string{"plain"},
			wantMetadata: []map[string]any{{"url": "https://example.com"}},
		},
		{
			name: "wrapped sentinel",
			err: zerr.With(
				zerr.Wrap(zerr.New("unknown target"), "target is not defined"),
				"target", "ghost",
			),
			wantMessages: []string{"target is not defined", "unknown target"},
			wantMetadata: []map[string]any{{"target": "ghost"}, {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntries(tt.err)
			require.Len(t, entries, len(tt.wantMessages))
			for i := range entries {
				assert.Equal(t, tt.wantMessages[i], entries[i].Message)
				assert.Equal(t, tt.wantMetadata[i], entries[i].Metadata)
			}
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single",
			entries: []logger.ErrorEntry{{Message: "boom"}},
			want:    "Error: boom",
		},
		{
			name: "cause with metadata",
			entries: []logger.ErrorEntry{
				{Message: "build failed", Metadata: map[string]any{"target": "usb", "arch": "arm64"}},
				{Message: "checksum mismatch"},
			},
			want: "Error: build failed\n" +
				"       arch: arm64\n" +
				"       target: usb\n\n" +
				"  Caused by:\n" +
				"    → checksum mismatch",
		},
		{
			name: "multi-line metadata",
			entries: []logger.ErrorEntry{
				{Message: "outer"},
				{Message: "build tool failed", Metadata: map[string]any{"output": "line1\nline2\n"}},
			},
			want: "Error: outer\n\n" +
				"  Caused by:\n" +
				"    → build tool failed\n" +
				"      output:\n" +
				"        line1\n" +
				"        line2",
		},
		{
			name:    "empty",
			entries: nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}

type recordingLogger struct {
	infos, warns []string
}

func (r *recordingLogger) Info(msg string) { r.infos = append(r.infos, msg) }
func (r *recordingLogger) Warn(msg string) { r.warns = append(r.warns, msg) }
func (r *recordingLogger) Error(error) {}

func TestHTTPLogger(t *testing.T) {
	rec := &recordingLogger{}
	h := logger.HTTPLogger{Logger: rec}

	h.Debug("performing request", "url", "x")
	h.Info("fetched", "bytes", 10)
	h.Warn("retrying", "attempt", 2, "dangling")
	h.Error("request failed", "err", "timeout")

	assert.Equal(t, []string{"fetched bytes=10"}, rec.infos)
	assert.Equal(t, []string{"retrying attempt=2", "request failed err=timeout"}, rec.warns)
}
