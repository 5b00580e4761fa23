// Package shell provides the subprocess executor adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alessio/shellescape"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultTailLines is the number of output lines attached to a tool failure.
const DefaultTailLines = 40

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger    ports.Logger
	tailLines int
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger:    logger,
		tailLines: DefaultTailLines,
	}
}

// Execute runs cmd with cmd.Env layered over the process environment.
//
// PATH entries from cmd.Env are prepended to the system PATH, so tools installed by earlier
// targets shadow system ones. Output lines go to the logger and, when ctx carries a vertex,
// to the vertex as well.
func (e *Executor) Execute(ctx context.Context, cmd *domain.Command) error {
	if cmd == nil || cmd.Name == "" {
		return nil
	}

	env := resolveEnvironment(os.Environ(), cmd.Env)

	executable := cmd.Name
	if !strings.ContainsRune(cmd.Name, filepath.Separator) {
		if lp, err := lookPath(cmd.Name, env); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, cmd.Args...) //nolint:gosec // commands come from the catalog
	// Keep the name as invoked rather than the resolved path.
	c.Args[0] = cmd.Name
	c.Dir = cmd.Dir
	c.Env = env

	quoted := shellescape.QuoteCommand(cmd.Argv())
	e.logger.Info("$ " + quoted)

	tail := newTailBuffer(e.tailLines)
	stdout := &logWriter{emit: e.logger.Info, tail: tail}
	stderr := &logWriter{emit: e.logger.Warn, tail: tail}

	c.Stdout = stdout
	c.Stderr = stderr
	if v, ok := ports.VertexFromContext(ctx); ok {
		c.Stdout = io.MultiWriter(stdout, v.Stdout())
		c.Stderr = io.MultiWriter(stderr, v.Stderr())
	}

	runErr := c.Run()
	stdout.Flush()
	stderr.Flush()

	if runErr == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return zerr.With(zerr.Wrap(ctxErr, "command interrupted"), "command", quoted)
	}

	exitCode := -1
	reason := fmt.Sprintf("%s could not be started: %v", cmd.Name, runErr)
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		exitCode = exitErr.ExitCode()
		reason = fmt.Sprintf("%s exited with code %d", cmd.Name, exitCode)
	}

	err := zerr.Wrap(domain.ErrToolFailed, reason)
	err = zerr.With(err, "command", quoted)
	err = zerr.With(err, "dir", cmd.Dir)
	err = zerr.With(err, "exit_code", exitCode)
	if out := tail.String(); out != "" {
		err = zerr.With(err, "output_tail", out)
	}
	return err
}

// logWriter splits a stream into lines and hands complete lines to emit.
type logWriter struct {
	mu   sync.Mutex
	emit func(string)
	tail *tailBuffer
	buf  []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.line(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush emits a trailing partial line.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.line(string(w.buf))
		w.buf = nil
	}
}

func (w *logWriter) line(s string) {
	s = strings.TrimSuffix(s, "\r")
	w.tail.Add(s)
	w.emit(s)
}

// tailBuffer keeps the last n lines written by either stream.
type tailBuffer struct {
	mu    sync.Mutex
	n     int
	lines []string
}

func newTailBuffer(n int) *tailBuffer {
	return &tailBuffer{n: n}
}

func (t *tailBuffer) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.n {
		t.lines = t.lines[len(t.lines)-t.n:]
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.lines) == 0 {
		return ""
	}
	return strings.Join(t.lines, "\n") + "\n"
}

// resolveEnvironment layers overlay over base. PATH from the overlay is prepended to the base PATH.
func resolveEnvironment(base, overlay []string) []string {
	envMap := make(map[string]string, len(base)+len(overlay))
	keys := make([]string, 0, len(base)+len(overlay))
	set := func(k, v string) {
		if _, ok := envMap[k]; !ok {
			keys = append(keys, k)
		}
		envMap[k] = v
	}

	for _, entry := range base {
		if k, v, ok := strings.Cut(entry, "="); ok {
			set(k, v)
		}
	}

	for _, entry := range overlay {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath := envMap["PATH"]; sysPath != "" && v != "" {
				v = v + string(os.PathListSeparator) + sysPath
			}
		}
		set(k, v)
	}

	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// lookPath searches the PATH of env rather than the PATH of the current process.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
